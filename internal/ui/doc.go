// Package ui renders run summaries and the interactive category picker.
//
// The picker [Model] follows bubbletea's Init/Update/View pattern with two views:
//  1. [CategoryView] : choose a storefront, or "all", from a bubbles list
//  2. [ConfirmView] : preview the links that would open and confirm with y
//
// [SummaryView] and [CountsView] are plain lipgloss renderers used outside the TUI.
package ui
