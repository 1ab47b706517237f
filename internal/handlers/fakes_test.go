package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes implementing the repository interfaces.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	user, ok := r.users[objID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	for _, user := range r.users {
		if user.UserName == userName || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) IsUserNameTaken(_ context.Context, userName string, exclude primitive.ObjectID) (bool, error) {
	for id, user := range r.users {
		if user.UserName == userName && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, userName string, bio *string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if userName != "" {
		user.UserName = userName
	}
	if bio != nil {
		user.Bio = *bio
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	user.Avatar = avatarURL
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id primitive.ObjectID, when time.Time) error {
	if user, ok := r.users[id]; ok {
		user.LastLogin = &when
	}
	return nil
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]*models.Post
	users *fakeUserRepo
}

func newFakePostRepo(users *fakeUserRepo) *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post), users: users}
}

func (r *fakePostRepo) view(post *models.Post) models.PostView {
	view := models.PostView{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Tags:      post.Tags,
		Image:     post.Image,
		Likes:     append([]primitive.ObjectID{}, post.Likes...),
		Votes:     post.Votes,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if user, ok := r.users.users[post.Creator]; ok {
		view.Creator = user.Summary()
	} else {
		view.Creator = models.UserSummary{ID: post.Creator}
	}
	return view
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}
	post, ok := r.posts[objID]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	copied := *post
	copied.Likes = append([]primitive.ObjectID{}, post.Likes...)
	return &copied, nil
}

func (r *fakePostRepo) GetPostViewByID(ctx context.Context, id string) (*models.PostView, error) {
	post, err := r.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := r.view(post)
	return &view, nil
}

func (r *fakePostRepo) ListPosts(_ context.Context, filter models.PostFilter, skip, limit int64) ([]models.PostView, int64, error) {
	matched := []*models.Post{}
	for _, post := range r.posts {
		if !filter.Creator.IsZero() && post.Creator != filter.Creator {
			continue
		}
		matched = append(matched, post)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	views := []models.PostView{}
	for i := skip; i < total && int64(len(views)) < limit; i++ {
		views = append(views, r.view(matched[i]))
	}
	return views, total, nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, post *models.Post) error {
	stored, ok := r.posts[post.ID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Tags = post.Tags
	stored.Image = post.Image
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) SetLike(_ context.Context, id, userID primitive.ObjectID, liked bool) error {
	post, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	for i, existing := range post.Likes {
		if existing == userID {
			if !liked {
				post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			}
			return nil
		}
	}
	if liked {
		post.Likes = append(post.Likes, userID)
	}
	return nil
}

func (r *fakePostRepo) IncrementVotes(_ context.Context, id primitive.ObjectID, delta int) (int, error) {
	post, ok := r.posts[id]
	if !ok {
		return 0, repositories.ErrPostNotFound
	}
	post.Votes += delta
	return post.Votes, nil
}

func (r *fakePostRepo) Leaderboard(_ context.Context, limit int64) ([]models.PostView, error) {
	ranked := []*models.Post{}
	for _, post := range r.posts {
		ranked = append(ranked, post)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return len(ranked[i].Likes) > len(ranked[j].Likes)
	})

	views := []models.PostView{}
	for i, post := range ranked {
		if int64(i) >= limit {
			break
		}
		view := r.view(post)
		view.Rank = i + 1
		views = append(views, view)
	}
	return views, nil
}

func (r *fakePostRepo) CountByCreator(_ context.Context, creator primitive.ObjectID) (int64, error) {
	var count int64
	for _, post := range r.posts {
		if post.Creator == creator {
			count++
		}
	}
	return count, nil
}

func (r *fakePostRepo) CountLikesReceived(_ context.Context, creator primitive.ObjectID) (int64, error) {
	var count int64
	for _, post := range r.posts {
		if post.Creator == creator {
			count += int64(len(post.Likes))
		}
	}
	return count, nil
}

func (r *fakePostRepo) ListLikedBy(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.PostView, error) {
	views := []models.PostView{}
	for _, post := range r.posts {
		for _, id := range post.Likes {
			if id == userID {
				views = append(views, r.view(post))
				break
			}
		}
		if int64(len(views)) >= limit {
			break
		}
	}
	return views, nil
}

func (r *fakePostRepo) CountLikedBy(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, post := range r.posts {
		for _, id := range post.Likes {
			if id == userID {
				count++
				break
			}
		}
	}
	return count, nil
}

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]*models.Comment
	users    *fakeUserRepo
}

func newFakeCommentRepo(users *fakeUserRepo) *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment), users: users}
}

func (r *fakeCommentRepo) view(comment *models.Comment) models.CommentView {
	view := models.CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		Votes:     append([]models.CommentVote{}, comment.Votes...),
		IsEdited:  comment.IsEdited,
		EditedAt:  comment.EditedAt,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if user, ok := r.users.users[comment.Author]; ok {
		view.Author = user.Summary()
	} else {
		view.Author = models.UserSummary{ID: comment.Author}
	}
	return view
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.Votes == nil {
		comment.Votes = []models.CommentVote{}
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", err)
	}
	comment, ok := r.comments[objID]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	copied := *comment
	copied.Votes = append([]models.CommentVote{}, comment.Votes...)
	return &copied, nil
}

func (r *fakeCommentRepo) list(match func(*models.Comment) bool, skip, limit int64) ([]models.CommentView, int64, error) {
	matched := []*models.Comment{}
	for _, comment := range r.comments {
		if match(comment) {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	views := []models.CommentView{}
	for i := skip; i < total && int64(len(views)) < limit; i++ {
		views = append(views, r.view(matched[i]))
	}
	return views, total, nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error) {
	return r.list(func(c *models.Comment) bool { return c.PostID == postID }, skip, limit)
}

func (r *fakeCommentRepo) ListByAuthor(_ context.Context, author primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error) {
	return r.list(func(c *models.Comment) bool { return c.Author == author }, skip, limit)
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string, editedAt time.Time) (*models.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &editedAt
	comment.UpdatedAt = editedAt
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) SetVotes(_ context.Context, id primitive.ObjectID, votes []models.CommentVote) error {
	comment, ok := r.comments[id]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	comment.Votes = votes
	return nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, comment := range r.comments {
		if comment.PostID == postID {
			delete(r.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeCommentRepo) CountByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	var count int64
	for _, comment := range r.comments {
		if comment.Author == author {
			count++
		}
	}
	return count, nil
}

// fakeUploader records uploads and can be told to fail.
type fakeUploader struct {
	fail    bool
	uploads int
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, folder, _ string) (string, error) {
	if u.fail {
		return "", fmt.Errorf("upload rejected")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	u.uploads++
	return fmt.Sprintf("https://cdn.test/%s/%d", folder, u.uploads), nil
}
