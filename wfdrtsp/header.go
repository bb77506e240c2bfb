package wfdrtsp

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
)

func normalizeKey(in string) string {
	switch strings.ToLower(in) {
	case "cseq":
		return "CSeq"
	case "www-authenticate":
		return "WWW-Authenticate"
	case "rtp-info":
		return "RTP-Info"
	}
	return http.CanonicalHeaderKey(in)
}

// Header is a map of RTSP header values, as found in both Request and Response.
type Header map[string]string

func (h Header) read(rb *bufio.Reader) error {
	count := 0

	for {
		byt, err := rb.ReadByte()
		if err != nil {
			return err
		}

		if byt == '\r' {
			err = readByteEqual(rb, '\n')
			if err != nil {
				return err
			}
			return nil
		}

		err = rb.UnreadByte()
		if err != nil {
			return err
		}

		if count >= maxHeaderKeys {
			return fmt.Errorf("headers count exceeds %d", maxHeaderKeys)
		}

		key, err := readBytesLimited(rb, ':', 256)
		if err != nil {
			return err
		}
		key = key[:len(key)-1]

		// skip spaces after colon
		for {
			byt, err = rb.ReadByte()
			if err != nil {
				return err
			}
			if byt != ' ' {
				rb.UnreadByte() //nolint:errcheck
				break
			}
		}

		val, err := readBytesLimited(rb, '\r', maxStatusLength)
		if err != nil {
			return err
		}
		val = val[:len(val)-1]

		err = readByteEqual(rb, '\n')
		if err != nil {
			return err
		}

		h[normalizeKey(string(key))] = string(val)
		count++
	}
}

func (h Header) write(bw *bufio.Writer) error {
	for k, v := range h {
		_, err := bw.Write([]byte(k + ": " + v + "\r\n"))
		if err != nil {
			return err
		}
	}

	_, err := bw.Write([]byte("\r\n"))
	return err
}

// Get returns a header value, case-insensitively on the canonical key.
func (h Header) Get(key string) (string, bool) {
	v, ok := h[normalizeKey(key)]
	return v, ok
}

// Set sets a header value.
func (h Header) Set(key, value string) {
	h[normalizeKey(key)] = value
}
