// Package model defines the boundary types shared by the intake, rendering and
// transport layers: substitution values, fragments, wire messages and the
// structured error taxonomy.
//
// Wire structs carry CBOR tags; they are encoded by the rpc package's codec and
// are the only types intended for direct serialization by clients.
package model
