// Package rpc defines the roomsplit.v1.ReceiptService Connect API: its
// messages, procedure names, handler and client constructors.
//
// Messages are plain Go structs carried by a JSON codec, so the service needs
// no generated code. Both constructors install the codec themselves.
package rpc

import "encoding/json"

// JSONCodec is a connect.Codec using encoding/json.
// Its name replaces Connect's default protojson codec.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string {
	return "json"
}

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec. An empty body decodes as the zero message.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
