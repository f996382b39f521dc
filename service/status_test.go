package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

func TestApplyStatusTransition_SetsPublishedAtOnce(t *testing.T) {
	post := &entities.Post{Status: enums.StatusPlanned}

	desc := ApplyStatusTransition(post, enums.StatusPublished)
	assert.Equal(t, enums.StatusPublished, post.Status)
	assert.NotNil(t, post.PublishedAt, "首次进入已发布状态应落发布时间")
	assert.Equal(t, "已发布", desc)

	firstPublishedAt := *post.PublishedAt

	// 退回编辑再重新发布，发布时间保持首次的值
	ApplyStatusTransition(post, enums.StatusNeedsEditing)
	time.Sleep(5 * time.Millisecond)
	ApplyStatusTransition(post, enums.StatusPublished)
	assert.Equal(t, firstPublishedAt, *post.PublishedAt, "再次发布不应覆盖发布时间")
}

func TestApplyStatusTransition_ExplicitPublishedAtRespected(t *testing.T) {
	scheduled := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	post := &entities.Post{Status: enums.StatusPlanned, PublishedAt: &scheduled}

	ApplyStatusTransition(post, enums.StatusPublished)
	assert.Equal(t, scheduled, *post.PublishedAt, "已显式设置的发布时间不应被覆盖")
}

func TestApplyStatusTransition_SameStatusIsPlainEdit(t *testing.T) {
	post := &entities.Post{Status: enums.StatusDraft}
	desc := ApplyStatusTransition(post, enums.StatusDraft)
	assert.Equal(t, "已更新稿件", desc)
	assert.Equal(t, enums.StatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
}

func TestApplyStatusTransition_ChangeDescriptions(t *testing.T) {
	cases := []struct {
		name string
		from enums.PostStatus
		to   enums.PostStatus
		want string
	}{
		{"送审", enums.StatusDraft, enums.StatusModerationFirstSign, "已送审"},
		{"退回修改", enums.StatusModerationFirstSign, enums.StatusNeedsEditing, "已退回修改"},
		{"排期", enums.StatusNeedsEditing, enums.StatusPlanned, "已排期发布"},
		{"发布", enums.StatusPlanned, enums.StatusPublished, "已发布"},
		{"归档", enums.StatusPublished, enums.StatusArchived, "已归档稿件"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := &entities.Post{Status: tc.from}
			assert.Equal(t, tc.want, ApplyStatusTransition(post, tc.to))
			assert.Equal(t, tc.to, post.Status)
		})
	}
}

func TestApplyStatusTransition_UnmappedPairFallsBack(t *testing.T) {
	// 结构上允许的任意迁移即使没有专属描述也必须成功
	post := &entities.Post{Status: enums.StatusArchived}
	desc := ApplyStatusTransition(post, enums.StatusDraft)
	assert.Equal(t, enums.StatusDraft, post.Status)
	assert.Equal(t, "N/A", desc)
}
