// Package ui provides the despensa terminal interface, built on Bubble Tea.
//
// The model never talks to the backend directly. It reads immutable snapshots
// from the state stores, re-reading them whenever a store signals a change,
// and dispatches store operations as tea.Cmds bounded by OpTimeout.
//
// # Screens
//
//   - Categorias, Produtos, Listas: one tab per collection. A tab fetches its
//     collection on first visit and shows a spinner, the store's error with a
//     retry hint, or the rows.
//   - List detail: the items of one list with the purchase overlay. Toggling
//     an item only changes the overlay; nothing is sent to the server.
//
// Forms validate with package form before anything is sent, and keep server
// errors inline. Other failures are flashed in the footer.
//
// # Key Bindings
//
//   - tab/shift+tab, 1/2/3: switch tabs
//   - n, e, d: new, edit, delete the selected row
//   - enter: open the selected list
//   - space, a, x: toggle purchased, add item, remove item (list detail)
//   - r: refetch the collection
//   - T: cycle theme
//   - L: recent log records
//   - ?: help
//   - q or Ctrl+C: quit
package ui
