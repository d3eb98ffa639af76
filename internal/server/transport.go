package server

import (
	"bufio"
	"net"
	"strings"
	"sync"
)

// lineTransport adapts a net.Conn to the chat session's line-stream contract:
// one UTF-8 message per newline-terminated line.
type lineTransport struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu   sync.Mutex
	writer    *bufio.Writer
	closeOnce sync.Once
}

func newLineTransport(conn net.Conn) *lineTransport {
	return &lineTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

func (t *lineTransport) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *lineTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return t.writer.Flush()
}

func (t *lineTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}
