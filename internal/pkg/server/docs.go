// Package server implements the chat server on top of the reliable transport.
//
// The server performs the following steps:
// 	1. Binds one UDP socket, wrapped in a transport.Conn whose reader goroutine separates
// 	   acks from start, data and end packets.
// 	2. A receiver goroutine repeatedly calls Receive, acknowledging packets and reassembling
// 	   them per peer address, and pushes every completed message onto a FIFO queue together
// 	   with its source address.
// 	3. A processing goroutine pops messages from the queue in order and hands them to the
// 	   handler, which registers joins, removes sessions on disconnect, answers user list
// 	   requests and fans chat messages out to their recipients.
// 	4. Replies and forwarded messages are sent with stop-and-wait delivery from the processing
// 	   goroutine. A slow or silent peer delays processing but never the receiver.
// 	5. Joins beyond the session capacity, duplicate usernames and unknown commands are answered
// 	   with an error response; the offending peer has no session afterwards.
//
// The session table and the outbound sequence numbers are only touched by the processing
// goroutine; the reassembly buffers are only touched by the receiver goroutine.
package server
