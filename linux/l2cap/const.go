package l2cap

import "time"

// Fixed channel identifiers [Vol 3, Part A, 2.1].
const (
	CIDSignalling     = 0x0001
	CIDConnectionless = 0x0002
	CIDATT            = 0x0004
	CIDLESignalling   = 0x0005
	CIDSMP            = 0x0006
	CIDBREDRSMP       = 0x0007

	// FirstDynamicCID is the local CID of CCB slot 0.
	FirstDynamicCID = 0x0040

	firstFixedCID = CIDConnectionless
	lastFixedCID  = CIDBREDRSMP

	// Source CIDs accepted on LE credit based connection requests.
	minLECOCCID = 0x0040
	maxLECOCCID = 0x007F
)

// Remaining signalling codes. The fixed size commands are in signal_fixed.go.
const (
	SignalCommandReject         = 0x01
	SignalConfigurationRequest  = 0x04
	SignalConfigurationResponse = 0x05
	SignalEchoRequest           = 0x08
	SignalEchoResponse          = 0x09
	SignalInformationResponse   = 0x0B
)

// Command reject reasons.
const (
	RejectNotUnderstood = 0x0000
	RejectMTUExceeded   = 0x0001
	RejectInvalidCID    = 0x0002
)

// Connection response results. ConnTimeout, ConnRejected and ConnNoLink
// are local.
const (
	ConnOK            = 0x0000
	ConnPending       = 0x0001
	ConnNoPSM         = 0x0002
	ConnSecurityBlock = 0x0003
	ConnNoResources   = 0x0004
	ConnTimeout       = 0xEEEE
	ConnRejected      = 0xEEEF
	ConnNoLink        = 0x00FF
)

// Connection response status values, used with ConnPending.
const (
	ConnStatusNone                  = 0x0000
	ConnStatusAuthenticationPending = 0x0001
	ConnStatusAuthorizationPending  = 0x0002
)

// LE credit based connection results.
const (
	LEConnOK                   = 0x0000
	LEConnNoPSM                = 0x0002
	LEConnNoResources          = 0x0004
	LEConnInsufficientAuth     = 0x0005
	LEConnInvalidSourceCID     = 0x0009
	LEConnSourceCIDAllocated   = 0x000A
	LEConnUnacceptableParams   = 0x000B
	minLECOCMTU                = 23
	minLECOCMPS                = 23
	maxLECOCMPS                = 65533
	leSDULengthSize            = 2
	leCreditReplenishThreshold = 2 // replenish once below initial/threshold
)

// Configuration response results. CfgTimeout is local.
const (
	CfgOK             = 0x0000
	CfgUnacceptable   = 0x0001
	CfgRejected       = 0x0002
	CfgUnknownOptions = 0x0003
	CfgPending        = 0x0004
	CfgTimeout        = 0xEEEE
)

// Configuration flags.
const cfgContinuation = 0x0001

// Information types and results.
const (
	InfoConnectionlessMTU = 0x0001
	InfoExtendedFeatures  = 0x0002
	InfoFixedChannels     = 0x0003

	InfoSuccess      = 0x0000
	InfoNotSupported = 0x0001
)

// Extended feature mask bits.
const (
	ExtFeatFlowControl  = 0x00000001
	ExtFeatRetransmit   = 0x00000002
	ExtFeatERTM         = 0x00000008
	ExtFeatStreaming    = 0x00000010
	ExtFeatFCS          = 0x00000020
	ExtFeatExtFlowSpec  = 0x00000040
	ExtFeatFixedChannel = 0x00000080
	ExtFeatExtWindow    = 0x00000100

	localExtFeatures = ExtFeatFixedChannel
)

// Connection parameter update results.
const (
	ConnParamsAccepted = 0x0000
	ConnParamsRejected = 0x0001
)

// Disconnect results reported through DisconnectCfm.
const (
	DisconnectOK      = 0x0000
	DisconnectTimeout = 0xEEEE
)

// Retransmission and flow control modes [Vol 3, Part A, 5.4]. Channels
// are only opened in basic mode; the others are carried in options.
const (
	ModeBasic     = 0x00
	ModeERTM      = 0x03
	ModeStreaming = 0x04
)

// QoS service types.
const (
	ServiceNoTraffic  = 0x00
	ServiceBestEffort = 0x01
	ServiceGuaranteed = 0x02
)

// Priority is the service band of a channel. Lower is served first.
type Priority uint8

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow

	numPriorities = 3
)

// DataRate is the relative traffic weight of a channel direction.
type DataRate uint8

const (
	DataRateNone DataRate = iota
	DataRateLow
	DataRateMedium
	DataRateHigh
)

// WriteResult is the outcome of a data write.
type WriteResult int

const (
	WriteSuccess WriteResult = iota
	WriteCongested
	WriteFailed
)

func (r WriteResult) String() string {
	switch r {
	case WriteSuccess:
		return "success"
	case WriteCongested:
		return "congested"
	default:
		return "failed"
	}
}

// Echo results.
const (
	EchoOK       = 0x00
	EchoTimeout  = 0x01
	EchoNoLink   = 0x02
	EchoRejected = 0x03
)

const (
	hdrLen    = 4 // length + cid
	cmdHdrLen = 4 // code + id + length

	DefaultMTU = 672
	MinMTU     = 48
	// Largest signalling PDU handled on BR/EDR; echo payloads beyond it are dropped.
	sigMTU = DefaultMTU

	defaultFlushTimeout = 0xFFFF
	defaultBuffQuota    = 2
	chnlQuotaPerRate    = 2

	// High priority band is served twice per round.
	rrQuotaHigh  = 2
	rrQuotaOther = 1

	maxHighPriorityQuota = 5

	hciReasonRemoteUser         = 0x13
	hciHostTimeout              = 0x10
	hciNoResources              = 0x0D
	hciUnsupportedRemoteFeature = 0x1A
	hciUnacceptParams           = 0x3B
)

// Protocol timers.
const (
	connectTimeout          = 60 * time.Second
	configTimeout           = 30 * time.Second
	disconnectTimeout       = 10 * time.Second
	infoTimeout             = 3 * time.Second
	echoTimeout             = 30 * time.Second
	connParamUpdateTimeout  = 30 * time.Second
	linkConnectTimeout      = 60 * time.Second
	leLinkConnectTimeout    = 30 * time.Second
	linkStartupTimeout      = 60 * time.Second
	linkDisconnectTimeout   = 45 * time.Second
	idleRetryTimeout        = 1 * time.Second
	linkFlowControlTimeout  = 2 * time.Second
	defaultHoldInterval     = 100 * time.Millisecond
	defaultHoldRetries      = 5
	defaultHeldPacketsLimit = 16
)
