package l2cap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSignal interface {
	Signal
	Unmarshal([]byte) error
}

func TestFixedSignalWireFormat(t *testing.T) {
	for _, tc := range []struct {
		name  string
		sig   fixedSignal
		empty fixedSignal
		code  int
		wire  []byte
	}{
		{"connection request", &ConnectionRequest{PSM: 0x1001, SourceCID: 0x0041}, &ConnectionRequest{},
			SignalConnectionRequest, []byte{0x01, 0x10, 0x41, 0x00}},
		{"connection response", &ConnectionResponse{DestinationCID: 0x0040, SourceCID: 0x0041, Result: ConnPending, Status: 0x0002}, &ConnectionResponse{},
			SignalConnectionResponse, []byte{0x40, 0x00, 0x41, 0x00, 0x01, 0x00, 0x02, 0x00}},
		{"disconnection request", &DisconnectRequest{DestinationCID: 0x0041, SourceCID: 0x0040}, &DisconnectRequest{},
			SignalDisconnectRequest, []byte{0x41, 0x00, 0x40, 0x00}},
		{"disconnection response", &DisconnectResponse{DestinationCID: 0x0040, SourceCID: 0x0041}, &DisconnectResponse{},
			SignalDisconnectResponse, []byte{0x40, 0x00, 0x41, 0x00}},
		{"information request", &InformationRequest{InfoType: 0x0003}, &InformationRequest{},
			SignalInformationRequest, []byte{0x03, 0x00}},
		{"conn param update request", &ConnectionParameterUpdateRequest{IntervalMin: 6, IntervalMax: 12, SlaveLatency: 0, TimeoutMultiplier: 500}, &ConnectionParameterUpdateRequest{},
			SignalConnectionParameterUpdateRequest, []byte{0x06, 0x00, 0x0C, 0x00, 0x00, 0x00, 0xF4, 0x01}},
		{"conn param update response", &ConnectionParameterUpdateResponse{Result: 0x0001}, &ConnectionParameterUpdateResponse{},
			SignalConnectionParameterUpdateResponse, []byte{0x01, 0x00}},
		{"le connection request", &LECreditBasedConnectionRequest{LEPSM: 0x0080, SourceCID: 0x0040, MTU: 512, MPS: 246, InitialCredits: 10}, &LECreditBasedConnectionRequest{},
			SignalLECreditBasedConnectionRequest, []byte{0x80, 0x00, 0x40, 0x00, 0x00, 0x02, 0xF6, 0x00, 0x0A, 0x00}},
		{"le connection response", &LECreditBasedConnectionResponse{DestinationCID: 0x0041, MTU: 23, MPS: 23, InitialCredits: 1, Result: 0x0002}, &LECreditBasedConnectionResponse{},
			SignalLECreditBasedConnectionResponse, []byte{0x41, 0x00, 0x17, 0x00, 0x17, 0x00, 0x01, 0x00, 0x02, 0x00}},
		{"le flow control credit", &LEFlowControlCredit{CID: 0x0040, Credits: 0xFFFF}, &LEFlowControlCredit{},
			SignalLEFlowControlCredit, []byte{0x40, 0x00, 0xFF, 0xFF}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.sig.Code())
			assert.Equal(t, tc.wire, tc.sig.Marshal())

			require.NoError(t, tc.empty.Unmarshal(append(tc.wire, 0xEE)), "trailing bytes are ignored")
			assert.Equal(t, tc.sig, tc.empty)

			assert.Error(t, tc.empty.Unmarshal(tc.wire[:len(tc.wire)-1]))
		})
	}
}
