package model

// MessageType is the first byte of every datagram sent by the server
type MessageType uint8

const (
	MTRegistrationResult MessageType = 1
	MTRealTimeUpdate     MessageType = 2
	MTRealTimeCarUpdate  MessageType = 3
	MTEntryList          MessageType = 4
	MTTrackData          MessageType = 5
	MTEntryListCar       MessageType = 6
	MTBroadcastingEvent  MessageType = 7
)

// CommandType is the first byte of every datagram sent to the server
type CommandType uint8

const (
	CTRegisterConnection   CommandType = 0x01
	CTDeregisterConnection CommandType = 0x09
	CTRequestEntryList     CommandType = 0x0a
	CTRequestTrackData     CommandType = 0x0b
	CTChangeHUDPage        CommandType = 0x31
	CTChangeFocus          CommandType = 0x32
	CTInstantReplayRequest CommandType = 0x33
)

// ProtocolVersion is sent with RegisterConnection
const ProtocolVersion uint8 = 4

func (m MessageType) String() string {
	switch m {
	case MTRegistrationResult:
		return "RegistrationResult"
	case MTRealTimeUpdate:
		return "RealTimeUpdate"
	case MTRealTimeCarUpdate:
		return "RealTimeCarUpdate"
	case MTEntryList:
		return "EntryList"
	case MTTrackData:
		return "TrackData"
	case MTEntryListCar:
		return "EntryListCar"
	case MTBroadcastingEvent:
		return "BroadcastingEvent"
	default:
		return "Unknown"
	}
}

func (c CommandType) String() string {
	switch c {
	case CTRegisterConnection:
		return "RegisterConnection"
	case CTDeregisterConnection:
		return "DeregisterConnection"
	case CTRequestEntryList:
		return "RequestEntryList"
	case CTRequestTrackData:
		return "RequestTrackData"
	case CTChangeHUDPage:
		return "ChangeHUDPage"
	case CTChangeFocus:
		return "ChangeFocus"
	case CTInstantReplayRequest:
		return "InstantReplayRequest"
	default:
		return "Unknown"
	}
}
