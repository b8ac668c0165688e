// Command labctl browses, edits and runs lab programs from the terminal.
//
// It works on the same catalog and user copy store as the MCP server, so a
// copy saved with labctl against the sqlite or redis backend is visible to
// the server and the other way round.
package main

func main() {
	Execute()
}
