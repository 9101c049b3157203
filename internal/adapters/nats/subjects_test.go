package natsadapter

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "demand.estimate.s-1", EstimateSubject("s-1"))
	assert.Equal(t, "demand.study.updated.s-1", StudyUpdatedSubject("s-1"))
}

func TestStreamsCoverPublishedSubjects(t *testing.T) {
	streams := Streams()
	covered := map[string]bool{}
	for _, s := range streams {
		for _, subj := range s.Subjects {
			covered[subj] = true
		}
	}
	assert.True(t, covered[EstimateSubjects])
	assert.True(t, covered[StudyUpdatedSubjects])
}

func TestStudyIDFromMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  *nats.Msg
		want string
	}{
		{"payload", &nats.Msg{Subject: "demand.study.updated.a", Data: []byte("b")}, "b"},
		{"subject fallback", &nats.Msg{Subject: "demand.study.updated.a"}, "a"},
		{"blank payload", &nats.Msg{Subject: "demand.study.updated.c", Data: []byte("  ")}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, studyIDFromMsg(tt.msg))
		})
	}
}
