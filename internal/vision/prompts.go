package vision

// System prompts for the three perception skills. These are carried as data
// so the client code stays prompt-agnostic.

const promptAssessScene = `Look at this image of a table or workspace. Determine the current state of the scene. Respond with ONLY one of the following labels, nothing else:

  no_book       - no book is visible on the table
  book_closed   - a book is present but closed
  book_open     - a book is open and pages are visible
  book_done     - the book is open to the last page or back cover
`

const promptClassifyPage = `Look at this image of a book page. Classify it as ONE of the following types. Respond with ONLY the type label, nothing else.

  blank     - empty page, no meaningful text
  index     - index, glossary, or bibliography page
  cover     - front or back cover
  title     - title page, half-title, or dedication page
  toc       - table of contents
  content   - regular content page (chapter text, articles, etc.)
`

const promptReadBase = `You are reading a book aloud to a listener. You receive an image of an open book showing one or two pages (a spread).

CRITICAL RULES:
1. First, determine the page orientation. The image may be rotated or angled. Mentally rotate it so the text is upright before reading.
2. If two pages are visible, read the LEFT page first, then the RIGHT page.
3. Within each page, read top to bottom, left to right.
4. If a title or header spans both pages, read it once.
5. Do NOT rearrange text by size or importance -- follow the physical layout.
6. For structural pages (cover, title page, table of contents): read all the text as it appears.

Never describe the page. Never say 'This page contains...' or 'The header reads...'. Just read what's there. If a word is unclear, give your best guess.`

const promptReadVerbose = promptReadBase + `

Read EVERYTHING on the page: titles, headings, subheadings, and all body text.
For content pages, read naturally, like storytime -- warm and human. Flow smoothly from sentence to sentence.`

const promptReadSkim = promptReadBase + `

ONLY read titles, headings, section headers, subheadings, and chapter names. Skip all body/paragraph text. Read them in the order they appear on the page.`

const promptHalfLeft = `

Read ONLY the LEFT page. Ignore the right page entirely.`

const promptHalfRight = `

Read ONLY the RIGHT page. Ignore the left page entirely.`

// readPrompt assembles the system prompt for a ReadPage call.
func readPrompt(opts ReadOptions) string {
	base := promptReadSkim
	if opts.Mode == ModeVerbose {
		base = promptReadVerbose
	}
	switch opts.Half {
	case HalfLeft:
		return base + promptHalfLeft
	case HalfRight:
		return base + promptHalfRight
	default:
		return base
	}
}
