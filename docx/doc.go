// Package docx is the document model for WordprocessingML packages.
//
// Parse opens a .docx zip, locates the main document part and its header
// parts, and exposes their content as flat, ordered lists of leaf nodes:
// TextRun nodes (the text of a w:t inside a w:r) and ImageRef nodes (an inline
// or anchored picture, labelled by its wp:docPr description). Nodes are
// mutated in place; Bytes re-serializes the package. Entries that were not
// touched are copied through byte for byte.
//
// Image content belongs to the media entry, not the drawing. Pictures whose
// relationships target the same entry share bytes, so SetContent on one of
// them changes all of them and the last write wins, whatever their labels.
package docx
