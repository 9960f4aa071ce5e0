/*
Package vm implements the core of an Ethereum-style virtual machine: a
stack-based interpreter over 256-bit words with gas-metered execution.

A single frame of execution is driven by EVM.Run, which repeatedly fetches
the opcode at the program counter, looks it up in a fixed JumpTable,
checks stack depth, charges the opcode's static and dynamic gas cost, and
runs its body. Nested calls, account creation and self-destruction are not
implemented here; they are delegated to a CallContext collaborator
supplied by whatever embeds this package.
*/
package vm
