// Package notifier routes newly created alerts to notification channels and hands
// them off to delivery collaborators.
//
// # Routing
//
// EligibleChannels is the pure routing function: an alert whose category is
// disabled in settings gets no channels; otherwise it gets the channels its
// category supports that are switched on. Compliance alerts may go out by SMS;
// every other category is limited to email and push.
//
// # Dispatch
//
// The Dispatcher applies a per-entity token bucket and then calls every Sender
// whose minimum priority the alert meets. Sender failures are logged and counted,
// never returned to the caller.
//
// # Senders
//
//	WebhookSender  signed HTTP POST from a worker pool, retried on 429 and 5xx
//	RedisSender    PUBLISH to fleet:alerts:<category>
//
// The live console feed (api.Hub) is also a Sender.
package notifier
