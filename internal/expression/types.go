package expression

// #region channels

// Channel identifies one intentional output channel.
type Channel string

const (
	ChannelEars      Channel = "ears"
	ChannelTail      Channel = "tail"
	ChannelVoice     Channel = "voice"
	ChannelPosture   Channel = "posture"
	ChannelGrip      Channel = "grip"
	ChannelBreathing Channel = "breathing"
	ChannelEyes      Channel = "eyes"
	ChannelProximity Channel = "proximity"
)

// Channels lists every output channel in canonical order.
var Channels = []Channel{
	ChannelEars,
	ChannelTail,
	ChannelVoice,
	ChannelPosture,
	ChannelGrip,
	ChannelBreathing,
	ChannelEyes,
	ChannelProximity,
}

// #endregion channels

// #region output

// Output is the intentional expression derived from one affect snapshot.
// It is purely derived and carries no persisted identity.
type Output struct {
	Ears      string
	Tail      string
	Voice     string
	Posture   string
	Grip      string
	Breathing string
	Eyes      string
	Proximity string
	Poof      bool
}

// Commands flattens the output into channel→value pairs for logging.
func (o Output) Commands() map[string]string {
	m := map[string]string{
		string(ChannelEars):      o.Ears,
		string(ChannelTail):      o.Tail,
		string(ChannelVoice):     o.Voice,
		string(ChannelPosture):   o.Posture,
		string(ChannelGrip):      o.Grip,
		string(ChannelBreathing): o.Breathing,
		string(ChannelEyes):      o.Eyes,
		string(ChannelProximity): o.Proximity,
	}
	if o.Poof {
		m["poof"] = "true"
	} else {
		m["poof"] = "false"
	}
	return m
}

// #endregion output
