package api

import (
	"context"
	"encoding/json"
)

func (c *Client) ListGroups() ([]Group, error) {
	var resp Response[[]Group]
	if err := c.Query("groups:get", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetGroup returns nil without error when the group does not exist.
func (c *Client) GetGroup(id string) (*Group, error) {
	var resp Response[*Group]
	if err := c.Query("groups:getGroup", map[string]string{"id": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateGroup(name, description, iconURL string) (string, error) {
	var resp Response[string]
	err := c.Mutation("groups:create", map[string]string{
		"name":        name,
		"description": description,
		"icon_url":    iconURL,
	}, &resp)
	return resp.Data, err
}

func (c *Client) SendMessage(groupID, user, content string) (string, error) {
	var resp Response[string]
	err := c.Mutation("messages:sendMessage", map[string]string{
		"content":  content,
		"group_id": groupID,
		"user":     user,
	}, &resp)
	return resp.Data, err
}

func (c *Client) ListMessages(groupID string) ([]Message, error) {
	var resp Response[[]Message]
	if err := c.Query("messages:get", map[string]string{"chatId": groupID}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Greeting(name string) (string, error) {
	var resp Response[string]
	err := c.Action("greeting:getGreeting", map[string]string{"name": name}, &resp)
	return resp.Data, err
}

func (c *Client) Version() (*VersionInfo, error) {
	var resp Response[VersionInfo]
	if err := c.Get("/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// WatchGroups calls fn with the full group list now and after every change.
func (c *Client) WatchGroups(ctx context.Context, fn func([]Group) error) error {
	return c.Subscribe(ctx, "groups:get", struct{}{}, func(raw json.RawMessage) error {
		var groups []Group
		if err := json.Unmarshal(raw, &groups); err != nil {
			return err
		}
		return fn(groups)
	})
}

// WatchMessages calls fn with the group's full message list now and after every change.
func (c *Client) WatchMessages(ctx context.Context, groupID string, fn func([]Message) error) error {
	return c.Subscribe(ctx, "messages:get", map[string]string{"chatId": groupID}, func(raw json.RawMessage) error {
		var messages []Message
		if err := json.Unmarshal(raw, &messages); err != nil {
			return err
		}
		return fn(messages)
	})
}
