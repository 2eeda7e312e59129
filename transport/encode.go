package transport

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes v for the given wire encoding, so the tick loop can
// produce one reply value and let the registry's peer decide the byte
// format.
func Encode(enc Encoding, v interface{}) ([]byte, error) {
	if enc == EncodingMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}
