// Package client implements the interactive chat client.
//
// The client performs the following steps:
//	1. Binds a UDP socket on an ephemeral port and picks a random initial sequence number.
//	2. Starts a receiver goroutine that reassembles messages from the server and renders them:
//	   user lists as "list: ..." and chat messages as "msg: <sender>: <text>".
//	3. Sends a join message with its username using stop-and-wait delivery.
//	4. Reads user input line by line: "msg <n> <users...> <text>", "list", "help" and "quit".
//	   Each command is sent to the server reliably; sequence numbers continue from the previous send.
//	5. On "quit" (or end of input) it sends a disconnect message and stops.
//	6. When the server answers with an error response (username taken, server full, unknown
//	   command) the receiver prints the reason and the client stops with the matching error.
//
// Only the input loop advances the outbound sequence number; only the receiver goroutine
// touches the inbound reassembly state.
package client
