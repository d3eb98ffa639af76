// Command client is a terminal chat client for the line protocol: it runs the
// password handshake, sends the display name, then pumps stdin and server
// lines concurrently until either side quits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
)

func main() {
	addr := flag.String("addr", "localhost:6666", "chat server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect:", err)
		os.Exit(1)
	}
	defer conn.Close()

	stdin := bufio.NewScanner(os.Stdin)
	serverReader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	send := func(line string) error {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return err
		}
		return writer.Flush()
	}

	// Password loop: retry until the server replies OK.
	for {
		fmt.Print("Enter server password: ")
		if !stdin.Scan() {
			return
		}
		if err := send(stdin.Text()); err != nil {
			fmt.Fprintln(os.Stderr, "connection lost:", err)
			os.Exit(1)
		}

		reply, err := serverReader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection lost:", err)
			os.Exit(1)
		}
		reply = strings.TrimSpace(reply)
		if reply == "OK" {
			break
		}
		fmt.Println(reply)
	}

	fmt.Print("Enter your display name: ")
	if !stdin.Scan() {
		return
	}
	username := strings.TrimSpace(stdin.Text())
	if err := send(username); err != nil {
		fmt.Fprintln(os.Stderr, "connection lost:", err)
		os.Exit(1)
	}

	done := make(chan struct{})

	// Server -> stdout pump. A "quit" line from the server ends the client.
	go func() {
		defer close(done)
		for {
			line, err := serverReader.ReadString('\n')
			if err != nil {
				fmt.Println("[INFO] Disconnected from server.")
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if strings.EqualFold(strings.TrimSpace(line), "quit") {
				fmt.Println("[INFO] Server has requested client to quit. Disconnecting...")
				return
			}
			fmt.Println(line)
		}
	}()

	// Stdin -> server pump. "quit" goes through bare so the server's leave
	// handling matches it.
	for stdin.Scan() {
		text := stdin.Text()
		if strings.EqualFold(strings.TrimSpace(text), "quit") {
			send("quit")
			break
		}
		if err := send(username + ": " + text); err != nil {
			break
		}
	}

	<-done
}
