/*
Package event announces changes to the command registry.

Publishers are the command manager and the loader; subscribers are the
HTTP event stream, the script watcher log and tests.

# Event Types

Command Events:
  - command.registered: a command passed validation and joined the registry
  - command.removed: a command was removed, alone or with its namespace
  - command.enabled: a disabled command was enabled again
  - command.disabled: a command was disabled

Load Events:
  - commands.loaded: a full load cycle finished
  - module.failed: a builtin module failed to import
  - script.failed: a user script failed to evaluate

History Events:
  - history.updated: an input line was pushed to the history

# Delivery

Subscribe and SubscribeAll register direct-call subscribers. Publish calls
each of them in its own goroutine; PublishSync calls them in order before
returning. Every event is also mirrored as a JSON message on a watermill
gochannel topic, which Stream exposes to consumers that want a channel.

	bus := event.NewBus()
	defer bus.Close()

	unsub := bus.Subscribe(event.CommandRegistered, func(e event.Event) {
		data := e.Data.(event.CommandData)
		fmt.Println("registered", data.Name)
	})
	defer unsub()
*/
package event
