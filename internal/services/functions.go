package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type FunctionKind string

const (
	KindQuery    FunctionKind = "query"
	KindMutation FunctionKind = "mutation"
	KindAction   FunctionKind = "action"
)

type Handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Function is a named server operation. Tables lists what a query reads; live
// subscriptions re-run it when any of them changes.
type Function struct {
	Name    string
	Kind    FunctionKind
	Tables  []string
	Handler Handler
}

type Registry struct {
	functions map[string]Function
	validate  *validator.Validate
}

func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]Function),
		validate:  validator.New(),
	}
}

func (r *Registry) Register(fn Function) {
	r.functions[fn.Name] = fn
}

func (r *Registry) Lookup(name string) (Function, error) {
	fn, ok := r.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	return fn, nil
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.functions)
	sort.Strings(names)
	return names
}

// Call runs the named function if it is of the given kind.
func (r *Registry) Call(ctx context.Context, kind FunctionKind, name string, args json.RawMessage) (interface{}, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if fn.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongFunctionKind, name, fn.Kind)
	}
	return fn.Handler(ctx, args)
}

func decodeArgs[T any](v *validator.Validate, raw json.RawMessage) (T, error) {
	var args T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return args, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := v.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
				return fe.Field() + " " + fe.Tag()
			})
			return args, fmt.Errorf("%w: %v", ErrInvalidArgs, fields)
		}
		return args, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return args, nil
}

// Required strings are pointers so that presence is checked and empty values pass.
type createGroupArgs struct {
	Name        *string `json:"name" validate:"required"`
	Description *string `json:"description" validate:"required"`
	IconURL     *string `json:"icon_url" validate:"required"`
}

type getGroupArgs struct {
	ID string `json:"id" validate:"required,uuid"`
}

type sendMessageArgs struct {
	Content *string `json:"content" validate:"required"`
	GroupID string  `json:"group_id" validate:"required,uuid"`
	User    *string `json:"user" validate:"required"`
	File    *string `json:"file"`
}

type getMessagesArgs struct {
	ChatID string `json:"chatId" validate:"required,uuid"`
}

type greetingArgs struct {
	Name *string `json:"name" validate:"required"`
}

// NewChatRegistry registers the group, message and greeting functions.
func NewChatRegistry(groups *GroupService, messages *MessageService) *Registry {
	r := NewRegistry()

	r.Register(Function{
		Name:   "groups:create",
		Kind:   KindMutation,
		Tables: []string{TableGroups},
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			args, err := decodeArgs[createGroupArgs](r.validate, raw)
			if err != nil {
				return nil, err
			}
			group, err := groups.Create(ctx, *args.Name, *args.Description, *args.IconURL)
			if err != nil {
				return nil, err
			}
			return group.ID.String(), nil
		},
	})

	r.Register(Function{
		Name:   "groups:get",
		Kind:   KindQuery,
		Tables: []string{TableGroups},
		Handler: func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return groups.List(ctx)
		},
	})

	r.Register(Function{
		Name:   "groups:getGroup",
		Kind:   KindQuery,
		Tables: []string{TableGroups},
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			args, err := decodeArgs[getGroupArgs](r.validate, raw)
			if err != nil {
				return nil, err
			}
			group, err := groups.Get(ctx, uuid.MustParse(args.ID))
			if errors.Is(err, ErrGroupNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return group, nil
		},
	})

	r.Register(Function{
		Name:   "messages:sendMessage",
		Kind:   KindMutation,
		Tables: []string{TableMessages},
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			args, err := decodeArgs[sendMessageArgs](r.validate, raw)
			if err != nil {
				return nil, err
			}
			message, err := messages.Send(ctx, SendMessageInput{
				Content: *args.Content,
				GroupID: uuid.MustParse(args.GroupID),
				User:    *args.User,
				File:    args.File,
			})
			if err != nil {
				return nil, err
			}
			return message.ID.String(), nil
		},
	})

	r.Register(Function{
		Name:   "messages:get",
		Kind:   KindQuery,
		Tables: []string{TableMessages, TableBlobs},
		Handler: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			args, err := decodeArgs[getMessagesArgs](r.validate, raw)
			if err != nil {
				return nil, err
			}
			return messages.ListByGroup(ctx, uuid.MustParse(args.ChatID))
		},
	})

	r.Register(Function{
		Name: "greeting:getGreeting",
		Kind: KindAction,
		Handler: func(_ context.Context, raw json.RawMessage) (interface{}, error) {
			args, err := decodeArgs[greetingArgs](r.validate, raw)
			if err != nil {
				return nil, err
			}
			return Greeting(*args.Name), nil
		},
	})

	return r
}
