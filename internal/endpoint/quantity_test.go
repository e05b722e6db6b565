package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceQuantity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "canonical block number response",
			raw:  `{"jsonrpc":"2.0","id":1,"result":"0x113f756"}`,
			want: "0x113f756",
		},
		{
			name: "single digit quantity",
			raw:  `{"jsonrpc":"2.0","id":1,"result":"0x1"}`,
			want: "0x1",
		},
		{
			name:    "too short",
			raw:     `{"result":"0x1"}`,
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sliceQuantity(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHexToDecimal(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    uint64
		wantErr error
	}{
		{name: "plain", hex: "0xff", want: 255},
		{name: "stray quotes tolerated", hex: `"0x10"`, want: 16},
		{name: "no prefix", hex: "1b4", want: 436},
		{name: "block number", hex: "0x113f756", want: 18085718},
		{name: "zero", hex: "0x0", want: 0},
		{name: "not hex", hex: "zz", wantErr: ErrParse},
		{name: "empty", hex: "", wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hexToDecimal(tt.hex)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractResult(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "scalar result",
			raw:  `{"jsonrpc":"2.0","id":1,"result":"0x113f756"}`,
			want: "0x113f756",
		},
		{
			name: "block object result",
			raw:  `{"jsonrpc":"2.0","id":1,"result":{"number":"0x1b4","hash":"0xdeadbeef"}}`,
			want: "0x1b4",
		},
		{
			name:    "not json",
			raw:     `<html>502 Bad Gateway</html>`,
			wantErr: ErrMalformed,
		},
		{
			name:    "missing result",
			raw:     `{"jsonrpc":"2.0","id":1}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "null result",
			raw:     `{"jsonrpc":"2.0","id":1,"result":null}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "rpc error",
			raw:     `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "object without number",
			raw:     `{"jsonrpc":"2.0","id":1,"result":{"hash":"0xabc"}}`,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractResult(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
