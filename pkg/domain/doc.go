/*
Package domain contains the core domain models for the Parley dispatcher.

It defines the request descriptor and the output contract shared by rule
matching and handlers. This package is kept pure and free of external
dependencies like I/O or persistence.

# Key Entities

  - Context: The incoming request descriptor (domain, intent, entities).
  - Entity: A single recognized entity inside a context.
  - ClientAction: A structural representation of what the host should render.
  - Slots: Named values available for template substitution in replies.
*/
package domain
