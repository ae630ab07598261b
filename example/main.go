// Package main provides a minimal walkthrough of the sockets library: a
// server and a client in one process exchanging typed values.
package main

import (
	"log"
	"time"

	"github.com/mgerhold/sockets"
)

func main() {
	accepted := make(chan *sockets.Client, 1)

	srv, err := sockets.NewServer(sockets.FamilyIPv4, 0, func(client *sockets.Client) {
		accepted <- client
	}, nil)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	defer srv.Stop()

	client, err := sockets.Dial(sockets.FamilyIPv4, "127.0.0.1", srv.LocalAddress().Port)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	peer := <-accepted
	defer peer.Close()

	fut, err := client.SendValues(int32(124234), int64(97234), uint8('a'), true)
	if err != nil {
		log.Fatalf("failed to post send: %v", err)
	}
	if _, err := fut.Await(); err != nil {
		log.Fatalf("send failed: %v", err)
	}

	var number int32
	var big int64
	var letter uint8
	var flag bool
	res, err := peer.ReceiveInto(time.Second, &number, &big, &letter, &flag)
	if err != nil {
		log.Fatalf("failed to post receive: %v", err)
	}
	if _, err := res.Await(); err != nil {
		log.Fatalf("receive failed: %v", err)
	}

	log.Printf("received: %d %d %c %v", number, big, letter, flag)
}
