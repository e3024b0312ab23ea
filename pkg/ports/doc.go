/*
Package ports defines the boundary interfaces between the Canopy core and its
hosts and adapters (Hexagonal Architecture).

Driven ports (implemented by adapters): TreeLoader, SelectionStore,
DistributedLocker, DismissWatcher. Driving port (implemented by the core,
consumed by adapters): SelectionService.
*/
package ports
