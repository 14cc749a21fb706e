package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
)

// handleConfiguration implements the Configuration category (§4.4).
// GetSetting/SetSetting address the live config.Config by a dotted
// JSON-tag path (e.g. "dht.replication_factor"); the round trip
// through encoding/json is the simplest way to navigate a path without
// a reflection-based field-path library no example repo in the pack
// pulls in, so this one corner stays on the standard library
// (DESIGN.md "Stdlib-only corners").
func (l *Loop) handleConfiguration(cmd command.Command) {
	switch c := cmd.(type) {
	case command.GetSetting:
		v, err := l.getSetting(c.Path)
		if err != nil {
			sendReply(c.Reply, command.Err(err))
			return
		}
		sendReply(c.Reply, command.Ok(v))

	case command.SetSetting:
		err := l.setSetting(c.Path, c.Value)
		sendReply(c.Reply, replyFromErr(err))

	case command.Reload:
		if err := c.Config.Validate(); err != nil {
			sendReply(c.Reply, command.Err(fmt.Errorf("%w: %v", errs.ErrInvalidCommand, err)))
			return
		}
		l.mu.Lock()
		l.cfg = c.Config
		l.mu.Unlock()
		sendReply(c.Reply, command.Ok(nil))

	case command.ValidateConfig:
		l.mu.Lock()
		cfg := l.cfg
		l.mu.Unlock()
		sendReply(c.Reply, replyFromErr(cfg.Validate()))

	case command.Merge:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.Watch:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.LoadFrom:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))
	}
}

func (l *Loop) getSetting(path string) (any, error) {
	l.mu.Lock()
	cfg := l.cfg
	l.mu.Unlock()

	raw, err := cfg.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	return walkPath(tree, strings.Split(path, "."))
}

func (l *Loop) setSetting(path string, value any) error {
	l.mu.Lock()
	cfg := l.cfg
	l.mu.Unlock()

	raw, err := cfg.ToJSON()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	if err := setPath(tree, strings.Split(path, "."), value); err != nil {
		return err
	}

	merged, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	next, err := config.FromJSON(merged)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidCommand, err)
	}

	l.mu.Lock()
	l.cfg = next
	l.mu.Unlock()
	return nil
}

func walkPath(node any, parts []string) (any, error) {
	if len(parts) == 0 {
		return node, nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", errs.ErrInvalidCommand, parts[0])
	}
	child, ok := obj[parts[0]]
	if !ok {
		return nil, fmt.Errorf("%w: no setting %q", errs.ErrInvalidCommand, parts[0])
	}
	return walkPath(child, parts[1:])
}

func setPath(node map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty setting path", errs.ErrInvalidCommand)
	}
	if len(parts) == 1 {
		if _, ok := node[parts[0]]; !ok {
			return fmt.Errorf("%w: no setting %q", errs.ErrInvalidCommand, parts[0])
		}
		node[parts[0]] = value
		return nil
	}
	child, ok := node[parts[0]].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %q is not an object", errs.ErrInvalidCommand, parts[0])
	}
	return setPath(child, parts[1:], value)
}
