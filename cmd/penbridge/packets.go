package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ReadPackets reads one hex-encoded packet per line. Blank lines and text after '#' are ignored;
// spaces inside a line are allowed ("01 00 00 20 41").
func ReadPackets(r io.Reader) ([][]byte, error) {
	var packets [][]byte
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.Join(strings.Fields(text), "")
		if text == "" {
			continue
		}
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		packets = append(packets, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return packets, nil
}

// StreamURL builds the pen stream endpoint of a session. http(s) bases become ws(s).
func StreamURL(base, sessionID, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", base)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/pen/v1/" + url.PathEscape(sessionID) + "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
