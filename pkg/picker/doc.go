/*
Package picker implements the interactive host loop for the selection widget.

It drives a Controller from a line-oriented terminal: the tree is rendered
with tri-state checkboxes, rows are activated by index, and a search term
filters the visible rows. IO goes through a handler strategy so frontends
(plain text, tests, future TUIs) can swap presentation without touching the
loop.
*/
package picker
