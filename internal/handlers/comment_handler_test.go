package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/openboard/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentFixture struct {
	handler  *CommentHandler
	users    *fakeUserRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	alice    *models.User
	bob      *models.User
	post     *models.Post
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	users := newFakeUserRepo()
	posts := newFakePostRepo(users)
	comments := newFakeCommentRepo(users)
	alice := seedUser(t, users, "alice", "alice@example.com")
	bob := seedUser(t, users, "bob", "bob@example.com")
	post := seedPost(t, posts, alice, "Hello", 0)
	return &commentFixture{
		handler:  NewCommentHandler(comments, posts, users),
		users:    users,
		posts:    posts,
		comments: comments,
		alice:    alice,
		bob:      bob,
		post:     post,
	}
}

func (f *commentFixture) seedComment(t *testing.T, author *models.User, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: f.post.ID, Author: author.ID, Content: content}
	require.NoError(t, f.comments.CreateComment(context.Background(), comment))
	return comment
}

func TestCreateCommentOnExistingPost(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)

	body := fmt.Sprintf(`{"postId":%q,"content":"nice post"}`, f.post.ID.Hex())
	c, rec := jsonContext(t, e, http.MethodPost, "/api/comments", body)
	asUser(c, f.bob)

	require.NoError(t, f.handler.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	data := dataMap(t, decodeEnvelope(t, rec))
	author := data["author"].(map[string]interface{})
	assert.Equal(t, "bob", author["userName"])
	assert.Equal(t, "nice post", data["content"])
	require.Len(t, f.comments.comments, 1)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)

	body := fmt.Sprintf(`{"postId":%q,"content":"nice post"}`, primitive.NewObjectID().Hex())
	c, _ := jsonContext(t, e, http.MethodPost, "/api/comments", body)
	asUser(c, f.bob)

	he := httpError(t, f.handler.CreateComment(c))
	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Empty(t, f.comments.comments)
}

func TestCreateCommentValidatesContent(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)

	body := fmt.Sprintf(`{"postId":%q,"content":""}`, f.post.ID.Hex())
	c, _ := jsonContext(t, e, http.MethodPost, "/api/comments", body)
	asUser(c, f.bob)

	he := httpError(t, f.handler.CreateComment(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")

	c, _ := jsonContext(t, e, http.MethodPut, "/api/comments/"+comment.ID.Hex(), `{"content":"hijacked"}`)
	c.SetParamNames("id")
	c.SetParamValues(comment.ID.Hex())
	asUser(c, f.bob)

	he := httpError(t, f.handler.UpdateComment(c))
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Equal(t, "original", f.comments.comments[comment.ID].Content)
}

func TestUpdateCommentMarksEdited(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")
	assert.False(t, comment.IsEdited)

	c, rec := jsonContext(t, e, http.MethodPut, "/api/comments/"+comment.ID.Hex(), `{"content":"revised"}`)
	c.SetParamNames("id")
	c.SetParamValues(comment.ID.Hex())
	asUser(c, f.alice)

	require.NoError(t, f.handler.UpdateComment(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeEnvelope(t, rec))
	assert.Equal(t, "revised", data["content"])
	assert.Equal(t, true, data["isEdited"])
	assert.NotNil(t, data["editedAt"])
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")

	c, _ := jsonContext(t, e, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), "")
	c.SetParamNames("id")
	c.SetParamValues(comment.ID.Hex())
	asUser(c, f.bob)

	he := httpError(t, f.handler.DeleteComment(c))
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Len(t, f.comments.comments, 1)

	c, rec := jsonContext(t, e, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), "")
	c.SetParamNames("id")
	c.SetParamValues(comment.ID.Hex())
	asUser(c, f.alice)

	require.NoError(t, f.handler.DeleteComment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.comments.comments)
}

func TestVoteCommentSameTypeTogglesOff(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")

	vote := func(voter *models.User, voteType string) models.VoteCounts {
		body := fmt.Sprintf(`{"voteType":%q}`, voteType)
		c, rec := jsonContext(t, e, http.MethodPost, "/api/comments/"+comment.ID.Hex()+"/vote", body)
		c.SetParamNames("id")
		c.SetParamValues(comment.ID.Hex())
		asUser(c, voter)
		require.NoError(t, f.handler.VoteComment(c))
		data := dataMap(t, decodeEnvelope(t, rec))
		return models.VoteCounts{
			Upvotes:    int(data["upvotes"].(float64)),
			Downvotes:  int(data["downvotes"].(float64)),
			TotalVotes: int(data["totalVotes"].(float64)),
		}
	}

	counts := vote(f.bob, models.VoteUp)
	assert.Equal(t, models.VoteCounts{Upvotes: 1, Downvotes: 0, TotalVotes: 1}, counts)

	// Casting the same vote again clears it.
	counts = vote(f.bob, models.VoteUp)
	assert.Equal(t, models.VoteCounts{}, counts)
	assert.Empty(t, f.comments.comments[comment.ID].Votes)
}

func TestVoteCommentOppositeTypeOverwrites(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")

	vote := func(voteType string) {
		body := fmt.Sprintf(`{"voteType":%q}`, voteType)
		c, _ := jsonContext(t, e, http.MethodPost, "/api/comments/"+comment.ID.Hex()+"/vote", body)
		c.SetParamNames("id")
		c.SetParamValues(comment.ID.Hex())
		asUser(c, f.bob)
		require.NoError(t, f.handler.VoteComment(c))
	}

	vote(models.VoteUp)
	vote(models.VoteDown)

	stored := f.comments.comments[comment.ID]
	require.Len(t, stored.Votes, 1)
	assert.Equal(t, models.VoteDown, stored.Votes[0].VoteType)
	assert.Equal(t, models.VoteCounts{Upvotes: 0, Downvotes: 1, TotalVotes: -1}, stored.CountVotes())
}

func TestVoteCommentRejectsUnknownType(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	comment := f.seedComment(t, f.alice, "original")

	c, _ := jsonContext(t, e, http.MethodPost, "/api/comments/"+comment.ID.Hex()+"/vote", `{"voteType":"sideways"}`)
	c.SetParamNames("id")
	c.SetParamValues(comment.ID.Hex())
	asUser(c, f.bob)

	he := httpError(t, f.handler.VoteComment(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetCommentsByPostPaginates(t *testing.T) {
	e := newEcho()
	f := newCommentFixture(t)
	for i := 0; i < 12; i++ {
		f.seedComment(t, f.alice, fmt.Sprintf("comment-%d", i))
	}

	c, rec := jsonContext(t, e, http.MethodGet, "/api/comments/post/"+f.post.ID.Hex()+"?page=2&limit=5", "")
	c.SetParamNames("postId")
	c.SetParamValues(f.post.ID.Hex())

	require.NoError(t, f.handler.GetCommentsByPost(c))
	data := dataMap(t, decodeEnvelope(t, rec))
	assert.Len(t, data["comments"].([]interface{}), 5)

	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 12, pagination["total"])
	assert.EqualValues(t, 3, pagination["totalPages"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, true, pagination["hasPrev"])
}
