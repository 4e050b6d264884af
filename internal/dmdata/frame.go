package dmdata

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/shindosokuho/relay/internal/relayerr"
)

// frameJSON is the envelope for every inbound WebSocket frame, spec §4.1
// "Each frame is JSON with a type discriminator."
type frameJSON struct {
	Type string `json:"type"`

	// start
	SocketID json.Number `json:"socketId"`

	// ping
	PingID string `json:"pingId"`

	// data
	Head        *json.RawMessage `json:"head"`
	Format      string           `json:"format"`
	Compression string           `json:"compression"`
	Encoding    string           `json:"encoding"`
	Body        string           `json:"body"`

	// error
	Code    int    `json:"code"`
	Close   bool   `json:"close"`
	Message string `json:"message"`
}

// benignShutdownCodes are error codes spec §4.1 says to log and ignore.
var benignShutdownCodes = map[int]bool{
	4808: true,
}

// pingVerificationFailureCode triggers a stored-pong retransmit, spec
// §4.1 "error: ... if code signals ping verification failure (4640)".
const pingVerificationFailureCode = 4640

// decodeFrameBody implements spec §4.1's "Body decoding contract": only
// format=xml, compression=gzip, encoding=base64 is accepted. Any
// deviation is a typed UnsupportedEncoding error and the message must be
// dropped by the caller.
func decodeFrameBody(f frameJSON) ([]byte, error) {
	if f.Format != "xml" || f.Compression != "gzip" || f.Encoding != "base64" {
		return nil, relayerr.New("dmdata.frame.decode", relayerr.KindDecode,
			errUnsupportedEncoding{format: f.Format, compression: f.Compression, encoding: f.Encoding})
	}

	raw, err := base64.StdEncoding.DecodeString(f.Body)
	if err != nil {
		return nil, relayerr.New("dmdata.frame.decode", relayerr.KindDecode, err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, relayerr.New("dmdata.frame.decode", relayerr.KindDecode, err)
	}
	defer gz.Close()

	xmlBody, err := io.ReadAll(gz)
	if err != nil {
		return nil, relayerr.New("dmdata.frame.decode", relayerr.KindDecode, err)
	}
	return xmlBody, nil
}

type errUnsupportedEncoding struct {
	format, compression, encoding string
}

func (e errUnsupportedEncoding) Error() string {
	return "unsupported telegram encoding: format=" + e.format + " compression=" + e.compression + " encoding=" + e.encoding
}
