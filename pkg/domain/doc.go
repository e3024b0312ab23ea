/*
Package domain contains the core domain models for the Canopy selection engine.

It defines the fundamental entities of the widget: the option tree, the
canonical selection value, the add/remove delta protocol, and the events
exchanged with hosts. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - OptionNode: One entry in the option hierarchy (id, label, children, mode override).
  - Selection: The canonical flat selection value, owned by the controller.
  - Delta: Disjoint add/remove id sets describing a selection-state change.
  - SelectEvent / UpdateEvent: The two event shapes emitted toward hosts.
*/
package domain
