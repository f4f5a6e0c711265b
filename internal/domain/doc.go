// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The central entity is Task. Partial updates are expressed as a TaskPatch
// whose fields record whether a value was supplied at all, so that "leave
// unchanged" and "clear" can be told apart.
package domain
