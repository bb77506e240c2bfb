package wfdrtsp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseReadWrite(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		res  Response
	}{
		{
			"m2 reply",
			[]byte("RTSP/1.0 200 OK\r\n" +
				"CSeq: 2\r\n" +
				"Public: OPTIONS, PAUSE, PLAY, SETUP, GET_PARAMETER, SET_PARAMETER, TEARDOWN, org.wfa.wfd1.0\r\n" +
				"User-Agent: SinkX/1.0\r\n" +
				"\r\n"),
			Response{
				StatusCode:    StatusOK,
				StatusMessage: "OK",
				Header: Header{
					"CSeq":       "2",
					"Public":     "OPTIONS, PAUSE, PLAY, SETUP, GET_PARAMETER, SET_PARAMETER, TEARDOWN, org.wfa.wfd1.0",
					"User-Agent": "SinkX/1.0",
				},
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Read(bufio.NewReader(bytes.NewReader(ca.byts)))
			require.NoError(t, err)
			require.Equal(t, ca.res, res)
		})
	}
}

func TestResponseDefaultStatusMessage(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	res := Response{StatusCode: StatusOK, Header: Header{"CSeq": "1"}}
	require.NoError(t, res.Write(bw))
	require.Contains(t, buf.String(), "RTSP/1.0 200 OK\r\n")
}
