package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Subscription
		wantErr bool
	}{
		{
			name:    "valid https url",
			sub:     Subscription{TargetURL: "https://example.com/hook"},
			wantErr: false,
		},
		{
			name:    "valid http url",
			sub:     Subscription{TargetURL: "http://example.com/hook"},
			wantErr: false,
		},
		{
			name:    "empty url",
			sub:     Subscription{TargetURL: ""},
			wantErr: true,
		},
		{
			name:    "relative url",
			sub:     Subscription{TargetURL: "/hook"},
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			sub:     Subscription{TargetURL: "ftp://example.com/hook"},
			wantErr: true,
		},
		{
			name:    "malformed url",
			sub:     Subscription{TargetURL: "://::not-a-url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				var ve ValidationError
				assert.ErrorAs(t, err, &ve)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubscription_Projection(t *testing.T) {
	sub := Subscription{
		ID:        "sub-1",
		TargetURL: "https://example.com/hook",
		Secret:    "s3cr3t",
		Events:    []string{"order.created"},
	}

	proj := sub.Projection()

	assert.Equal(t, sub.ID, proj.ID)
	assert.Equal(t, sub.TargetURL, proj.TargetURL)
	assert.Equal(t, sub.Secret, proj.Secret)
	assert.Equal(t, sub.Events, proj.Events)
}

func TestSubscriptionUpdate_Apply(t *testing.T) {
	sub := &Subscription{
		ID:        "sub-1",
		TargetURL: "https://example.com/hook",
		Secret:    "old-secret",
		Events:    []string{"order.created"},
	}

	newURL := "https://example.org/updated"
	update := SubscriptionUpdate{TargetURL: &newURL}
	update.Apply(sub)

	assert.Equal(t, newURL, sub.TargetURL)
	assert.Equal(t, "old-secret", sub.Secret, "fields not in the update must be left unchanged")
	assert.Equal(t, []string{"order.created"}, sub.Events)
}

func TestSubscriptionUpdate_ApplyClearsEventsOnlyWhenSet(t *testing.T) {
	sub := &Subscription{Events: []string{"order.created"}}

	update := SubscriptionUpdate{EventsSet: true, Events: nil}
	update.Apply(sub)

	assert.Nil(t, sub.Events)
}
