// Package relay drives the node's command-line client to apply fee deltas to
// mempool transactions.
//
// The client builds an argument array of the form
//
//	<binary> [-rpcwallet=<wallet>] [extra args...] prioritisetransaction <txid> 0.0 <feeDelta>
//
// and runs it without a shell. A non-zero exit is reported as a CommandError
// carrying the trimmed stderr. Execution is abstracted behind Executor so tests
// can inject stubs with WithExecutor.
package relay
