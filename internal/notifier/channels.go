package notifier

import "github.com/sonaligoyal925/FlePort/internal/types"

// channelTable lists the channels each category may be delivered through, in
// canonical order. SMS is reserved for compliance deadlines.
var channelTable = map[types.Category][]types.Channel{
	types.CategoryCompliance:  {types.ChannelEmail, types.ChannelSMS, types.ChannelPush},
	types.CategoryMaintenance: {types.ChannelEmail, types.ChannelPush},
	types.CategoryPerformance: {types.ChannelEmail, types.ChannelPush},
	types.CategoryAchievement: {types.ChannelEmail, types.ChannelPush},
	types.CategoryGeneral:     {types.ChannelEmail, types.ChannelPush},
}

// EligibleChannels returns the channels an alert should be delivered through:
// nothing when its category is disabled, otherwise the category's applicable
// channels that are switched on in settings. Order is email, sms, push.
func EligibleChannels(a types.Alert, s types.Settings) []types.Channel {
	if !s.CategoryEnabled(a.Category) {
		return nil
	}
	var out []types.Channel
	for _, ch := range channelTable[a.Category] {
		if s.ChannelEnabled(ch) {
			out = append(out, ch)
		}
	}
	return out
}
