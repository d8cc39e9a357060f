// Package state holds the client-side copies of the backend collections.
//
// Each Store tracks one collection together with a fetch status and the last
// user-facing error. Mutations are applied only after the backend confirms
// them, so a failed request never leaves a half-applied change behind.
// ListaStore adds the nested item operations of shopping lists.
package state
