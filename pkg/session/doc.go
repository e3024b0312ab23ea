/*
Package session implements widget session management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to the
canonical selection of a session across multiple replicas, integrating local
mutexes with distributed locking and long-term storage adapters. Serializing
activations per session preserves delta ordering: each user action merges
against the value produced by the previous one.
*/
package session
