package model

// names of the emitted events
const (
	EventRegistrationResult = "registrationResult"
	EventRealTimeUpdate     = "realTimeUpdate"
	EventRealTimeCarUpdate  = "realTimeCarUpdate"
	EventEntryList          = "entryList"
	EventTrackData          = "trackData"
	EventEntryListCar       = "entryListCar"
	EventBroadcastingEvent  = "broadcastingEvent"
	EventDisconnect         = "disconnect"
)

// Event is a record emitted by the session controller.
// The set of implementations is closed, see the methods below.
type Event interface {
	EventName() string
	isEvent()
}

// Message is a decoded inbound datagram
type Message interface {
	MessageType() MessageType
	isMessage()
}

// Disconnect is emitted after the client deregistered
type Disconnect struct{}

func (*RegistrationResult) EventName() string { return EventRegistrationResult }
func (*RealTimeUpdate) EventName() string     { return EventRealTimeUpdate }
func (*RealTimeCarUpdate) EventName() string  { return EventRealTimeCarUpdate }
func (CarMap) EventName() string              { return EventEntryList }
func (*TrackData) EventName() string          { return EventTrackData }
func (*EntryListCar) EventName() string       { return EventEntryListCar }
func (*BroadcastingEvent) EventName() string  { return EventBroadcastingEvent }
func (*Disconnect) EventName() string         { return EventDisconnect }

func (*RegistrationResult) isEvent() {}
func (*RealTimeUpdate) isEvent()     {}
func (*RealTimeCarUpdate) isEvent()  {}
func (CarMap) isEvent()              {}
func (*TrackData) isEvent()          {}
func (*EntryListCar) isEvent()       {}
func (*BroadcastingEvent) isEvent()  {}
func (*Disconnect) isEvent()         {}

func (*RegistrationResult) MessageType() MessageType { return MTRegistrationResult }
func (*RealTimeUpdate) MessageType() MessageType     { return MTRealTimeUpdate }
func (*RealTimeCarUpdate) MessageType() MessageType  { return MTRealTimeCarUpdate }
func (*EntryList) MessageType() MessageType          { return MTEntryList }
func (*TrackData) MessageType() MessageType          { return MTTrackData }
func (*EntryListCar) MessageType() MessageType       { return MTEntryListCar }
func (*BroadcastingEvent) MessageType() MessageType  { return MTBroadcastingEvent }

func (*RegistrationResult) isMessage() {}
func (*RealTimeUpdate) isMessage()     {}
func (*RealTimeCarUpdate) isMessage()  {}
func (*EntryList) isMessage()          {}
func (*TrackData) isMessage()          {}
func (*EntryListCar) isMessage()       {}
func (*BroadcastingEvent) isMessage()  {}
