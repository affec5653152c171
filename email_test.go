package courier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutboundEmailValidate(t *testing.T) {
	tests := []struct {
		name    string
		email   OutboundEmail
		wantErr bool
	}{
		{
			name:  "valid",
			email: OutboundEmail{To: []string{"a@example.com"}, Subject: "s", Body: "b"},
		},
		{
			name:  "cc only recipient",
			email: OutboundEmail{CC: []string{"a@example.com"}},
		},
		{
			name:  "bcc only recipient",
			email: OutboundEmail{BCC: []string{"a@example.com"}},
		},
		{
			name:    "no recipients",
			email:   OutboundEmail{Subject: "s", Body: "b"},
			wantErr: true,
		},
		{
			name:    "malformed to address",
			email:   OutboundEmail{To: []string{"nobody"}},
			wantErr: true,
		},
		{
			name:    "malformed cc address",
			email:   OutboundEmail{To: []string{"a@example.com"}, CC: []string{"nobody"}},
			wantErr: true,
		},
		{
			name:    "malformed reply-to",
			email:   OutboundEmail{To: []string{"a@example.com"}, ReplyTo: "nobody"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.email.Validate()
			if tt.wantErr {
				assert.True(t, IsErrorCode(err, EINVALID))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecipientsCombinesAllLists(t *testing.T) {
	email := OutboundEmail{
		To:  []string{"a@example.com"},
		CC:  []string{"b@example.com"},
		BCC: []string{"c@example.com"},
	}
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com", "c@example.com"},
		email.Recipients())
}

func TestDraftStatusIsSendable(t *testing.T) {
	assert.True(t, DraftStatusDraft.IsSendable())
	assert.True(t, DraftStatusFailed.IsSendable())
	assert.False(t, DraftStatusSent.IsSendable())
}
