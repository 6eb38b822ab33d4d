package types

// Channel is a notification delivery medium.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Channels lists every channel in canonical order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush}
}

// Settings toggles alert categories and delivery channels.
type Settings struct {
	DocumentExpiry      bool `json:"documentExpiry"`
	VehicleMaintenance  bool `json:"vehicleMaintenance"`
	PerformanceAlerts   bool `json:"performanceAlerts"`
	EarningsMilestones  bool `json:"earningsMilestones"`
	SystemNotifications bool `json:"systemNotifications"`

	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
}

// DefaultSettings mirrors the console defaults: everything on except earnings milestones.
func DefaultSettings() Settings {
	return Settings{
		DocumentExpiry:      true,
		VehicleMaintenance:  true,
		PerformanceAlerts:   true,
		EarningsMilestones:  false,
		SystemNotifications: true,
		EmailNotifications:  true,
		SMSNotifications:    true,
		PushNotifications:   true,
	}
}

// CategoryEnabled reports whether alerts of category c should be produced and routed.
func (s Settings) CategoryEnabled(c Category) bool {
	switch c {
	case CategoryCompliance:
		return s.DocumentExpiry
	case CategoryMaintenance:
		return s.VehicleMaintenance
	case CategoryPerformance:
		return s.PerformanceAlerts
	case CategoryAchievement:
		return s.EarningsMilestones
	case CategoryGeneral:
		return s.SystemNotifications
	}
	return false
}

// ChannelEnabled reports whether the channel toggle is on.
func (s Settings) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return s.EmailNotifications
	case ChannelSMS:
		return s.SMSNotifications
	case ChannelPush:
		return s.PushNotifications
	}
	return false
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	DocumentExpiry      *bool `json:"documentExpiry,omitempty"`
	VehicleMaintenance  *bool `json:"vehicleMaintenance,omitempty"`
	PerformanceAlerts   *bool `json:"performanceAlerts,omitempty"`
	EarningsMilestones  *bool `json:"earningsMilestones,omitempty"`
	SystemNotifications *bool `json:"systemNotifications,omitempty"`
	EmailNotifications  *bool `json:"emailNotifications,omitempty"`
	SMSNotifications    *bool `json:"smsNotifications,omitempty"`
	PushNotifications   *bool `json:"pushNotifications,omitempty"`
}

// Apply returns s with the patch's non-nil fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.DocumentExpiry, p.DocumentExpiry)
	set(&s.VehicleMaintenance, p.VehicleMaintenance)
	set(&s.PerformanceAlerts, p.PerformanceAlerts)
	set(&s.EarningsMilestones, p.EarningsMilestones)
	set(&s.SystemNotifications, p.SystemNotifications)
	set(&s.EmailNotifications, p.EmailNotifications)
	set(&s.SMSNotifications, p.SMSNotifications)
	set(&s.PushNotifications, p.PushNotifications)
	return s
}
