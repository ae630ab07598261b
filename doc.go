// Package sockets provides an asynchronous request/response API on top of
// blocking TCP sockets, with typed framing in network byte order.
//
// Features:
//   - Connection engine: every endpoint owns a sender and a receiver worker
//     that consume posted tasks in FIFO order and complete them as futures,
//     surviving peer disconnects, partial reads, partial writes and
//     timeouts.
//   - MessageBuffer: a byte accumulator that serializes and parses
//     fixed-width integral values in big-endian order with an
//     all-or-nothing extraction contract.
//   - Synchronized: a mutex-guarded cell providing scoped, optionally
//     condition-variable-gated access to shared state.
//   - Server: a listening endpoint whose accept goroutine hands every
//     connection to a user callback as a ready-to-use Client.
//
// Basic client example:
//
//	client, err := sockets.Dial(sockets.FamilyIPv4, "localhost", 9000)
//	if err != nil {
//	    // handle error
//	}
//	defer client.Close()
//	fut, err := client.Send([]byte("hello"))
//	if err != nil {
//	    // handle error
//	}
//	sent, err := fut.Await()
//
// Basic server example:
//
//	srv, err := sockets.NewServer(sockets.FamilyIPv4, 9000, func(c *sockets.Client) {
//	    go echo(c)
//	}, nil)
//	if err != nil {
//	    // handle error
//	}
//	defer srv.Stop()
//
// Typed messaging:
//
//	fut, _ := client.SendValues(int32(42), true, uint64(7))
//	var answer int32
//	var flag bool
//	var id uint64
//	res, _ := peer.ReceiveInto(time.Second, &answer, &flag, &id)
//	_, err = res.Await()
package sockets
