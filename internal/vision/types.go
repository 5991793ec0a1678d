package vision

// SceneState describes the workspace as seen by the table camera.
// It is recomputed on every control-loop iteration and never cached.
type SceneState string

const (
	SceneNoBook     SceneState = "no_book"
	SceneBookClosed SceneState = "book_closed"
	SceneBookOpen   SceneState = "book_open"
	SceneBookDone   SceneState = "book_done"
)

// sceneStates lists every state the scene classifier may return, in the
// order they are matched when normalizing a raw model response.
var sceneStates = []SceneState{SceneNoBook, SceneBookClosed, SceneBookOpen, SceneBookDone}

// PageType classifies a single spread before committing to a full read.
type PageType string

const (
	PageBlank   PageType = "blank"
	PageIndex   PageType = "index"
	PageCover   PageType = "cover"
	PageTitle   PageType = "title"
	PageTOC     PageType = "toc"
	PageContent PageType = "content"
)

var pageTypes = []PageType{PageBlank, PageIndex, PageCover, PageTitle, PageTOC, PageContent}

// SkipTypes are page types that are never narrated. Every other PageType
// is read aloud; the two sets partition the enum.
var SkipTypes = map[PageType]bool{
	PageBlank: true,
	PageIndex: true,
}

// Skippable reports whether a page of this type should be skipped
// without issuing any read call.
func (p PageType) Skippable() bool {
	return SkipTypes[p]
}

// ReadMode selects how much of a page gets read.
type ReadMode string

const (
	// ModeVerbose reads everything on the page.
	ModeVerbose ReadMode = "verbose"

	// ModeSkim reads only titles, headings and chapter names.
	ModeSkim ReadMode = "skim"
)

// PageHalf selects which half of an open spread a read call focuses on.
type PageHalf string

const (
	HalfLeft  PageHalf = "left"
	HalfRight PageHalf = "right"
	HalfWhole PageHalf = "whole"
)

// ReadOptions parameterizes a ReadPage call.
type ReadOptions struct {
	Half PageHalf
	Mode ReadMode
}
