package hci

import "time"

// HCI Packet types
const (
	PktTypeCommand uint8 = 0x01
	PktTypeACLData uint8 = 0x02
	PktTypeSCOData uint8 = 0x03
	PktTypeEvent   uint8 = 0x04
	PktTypeVendor  uint8 = 0xFF
)

// Packet boundary flags of HCI ACL Data Packet [Vol 2, Part E, 5.4.2].
const (
	PbfHostToControllerStart = 0x00 // Start of a non-automatically-flushable from host to controller.
	PbfContinuing            = 0x01 // Continuing fragment.
	PbfControllerToHostStart = 0x02 // Start of an automatically-flushable PDU.
	PbfCompleteL2CAPPDU      = 0x03 // A automatically flushable complete PDU. (Not used in LE-U).
)

// Link types of Connection Complete [Vol 2, Part E, 7.7.3].
const (
	LinkTypeSCO  = 0x00
	LinkTypeACL  = 0x01
	LinkTypeESCO = 0x02
)

// Current modes of Mode Change [Vol 2, Part E, 7.7.20].
const (
	ModeActive = 0x00
	ModeHold   = 0x01
	ModeSniff  = 0x02
	ModePark   = 0x03
)

const (
	aclHeaderLen = 4
	l2capHdrLen  = 4

	// Largest parameter block of a command packet.
	maxHciPayload = 255

	ogfVendorSpecificDebug = 0x3F
	ogfBitShift            = 10

	// Commands queued while the controller has no command credit.
	maxQueuedCommands = 64

	// Default ACL buffer length when the controller reports none.
	defaultACLBufSize = 27

	readTimeout = 100 * time.Millisecond
)
