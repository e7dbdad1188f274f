// sesskeep-cli is the command-line management tool for a SessKeep
// server: create, inspect, touch, rekey, and revoke sessions over the
// server's REST API.
package main
