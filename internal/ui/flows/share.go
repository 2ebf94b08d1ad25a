package flows

import (
	"github.com/Its-donkey/formwire/internal/ui/connections"
	"github.com/Its-donkey/formwire/internal/ui/submit"
)

// Share sends selected analyses to selected users.
func Share() submit.Options {
	return submit.Options{
		Validate: submit.All(
			submit.Native(""),
			submit.Required("analysis_ids", "user_ids"),
		),
		BusyText: "Sharing...",
		IdleText: "Share",
	}
}

// AddConnection adds the user returned by the server to the connection list.
// A users[] payload replaces the list instead.
func AddConnection(list *connections.List) submit.Options {
	return submit.Options{
		Validate: submit.Native(""),
		BusyText: "Adding...",
		OnSuccess: func(resp submit.Response) {
			switch {
			case resp.Payload.Users != nil:
				list.ApplyUsers(resp.Payload.Users)
			case resp.Payload.User != nil:
				list.Add(connections.FromUser(*resp.Payload.User))
			}
		},
	}
}

// RemoveConnection removes a connection. The removed id comes from the
// response's user, or from a `user_id` trigger when the server omits it.
func RemoveConnection(list *connections.List) submit.Options {
	return submit.Options{
		BusyText: "Removing...",
		OnSuccess: func(resp submit.Response) {
			switch {
			case resp.Payload.Users != nil:
				list.ApplyUsers(resp.Payload.Users)
			case resp.Payload.User != nil:
				list.Remove(string(resp.Payload.User.ID))
			case resp.Action.Name == "user_id" && resp.Action.Value != "":
				list.Remove(resp.Action.Value)
			}
		},
	}
}
