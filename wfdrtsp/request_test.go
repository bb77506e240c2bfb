package wfdrtsp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestReadWrite(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		req  Request
	}{
		{
			"m1 options",
			[]byte("OPTIONS * RTSP/1.0\r\n" +
				"CSeq: 1\r\n" +
				"Require: org.wfa.wfd1.0\r\n" +
				"\r\n"),
			Request{
				Method: OPTIONS,
				URL:    "*",
				Header: Header{
					"CSeq":    "1",
					"Require": "org.wfa.wfd1.0",
				},
			},
		},
		{
			"m3 get_parameter with body",
			[]byte("GET_PARAMETER rtsp://192.0.2.1/wfd1.0 RTSP/1.0\r\n" +
				"CSeq: 2\r\n" +
				"Content-Type: text/parameters\r\n" +
				"Content-Length: 10\r\n" +
				"\r\n" +
				"0123456789"),
			Request{
				Method: GET_PARAMETER,
				URL:    "rtsp://192.0.2.1/wfd1.0",
				Header: Header{
					"CSeq":         "2",
					"Content-Type": "text/parameters",
				},
				Content: []byte("0123456789"),
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var req Request
			err := req.Read(bufio.NewReader(bytes.NewReader(ca.byts)))
			require.NoError(t, err)
			require.Equal(t, ca.req, req)

			var buf bytes.Buffer
			bw := bufio.NewWriter(&buf)
			err = ca.req.Write(bw)
			require.NoError(t, err)

			var req2 Request
			err = req2.Read(bufio.NewReader(bytes.NewReader(buf.Bytes())))
			require.NoError(t, err)
			require.Equal(t, ca.req, req2)
		})
	}
}

func TestRequestReadErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
	}{
		{"empty method", []byte(" * RTSP/1.0\r\n\r\n")},
		{"empty url", []byte("OPTIONS  RTSP/1.0\r\n\r\n")},
		{"bad protocol", []byte("OPTIONS * RTSP/2.0\r\n\r\n")},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var req Request
			err := req.Read(bufio.NewReader(bytes.NewReader(ca.byts)))
			require.Error(t, err)
		})
	}
}
