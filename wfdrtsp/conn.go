package wfdrtsp

import (
	"bufio"
	"io"
)

const readBufferSize = 4096

// Conn wraps a byte stream (typically a TCP connection) with buffered
// RTSP request/response framing. It is the "send(msg), on_request(handler),
// on_response(handler)" collaborator described at the interface level by
// the WFD negotiation spec: everything above this layer only ever calls
// ReadRequest / ReadResponse / WriteRequest / WriteResponse.
type Conn struct {
	br *bufio.Reader
	bw *bufio.Writer
}

// NewConn allocates a Conn around rw.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		br: bufio.NewReaderSize(rw, readBufferSize),
		bw: bufio.NewWriterSize(rw, readBufferSize),
	}
}

// ReadRequest reads the next Request.
func (c *Conn) ReadRequest() (*Request, error) {
	var req Request
	if err := req.Read(c.br); err != nil {
		return nil, err
	}
	return &req, nil
}

// ReadResponse reads the next Response.
func (c *Conn) ReadResponse() (*Response, error) {
	var res Response
	if err := res.Read(c.br); err != nil {
		return nil, err
	}
	return &res, nil
}

// WriteRequest writes a Request.
func (c *Conn) WriteRequest(req *Request) error {
	return req.Write(c.bw)
}

// WriteResponse writes a Response.
func (c *Conn) WriteResponse(res *Response) error {
	return res.Write(c.bw)
}
