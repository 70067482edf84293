package slang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slanglab-api/internal/domain/entity"
	apperrors "slanglab-api/pkg/errors"
)

type serviceFixture struct {
	svc          *Service
	slangRepo    *fakeSlangRepo
	votes        *fakeVoteRepo
	translations *fakeTranslationRepo
	favorites    *fakeFavoriteRepo
	cache        *fakeStatsCache
}

func newServiceFixture(maxPerDay int, terms ...*entity.SlangTerm) *serviceFixture {
	f := &serviceFixture{
		slangRepo:    newFakeSlangRepo(terms...),
		votes:        &fakeVoteRepo{},
		translations: &fakeTranslationRepo{},
		favorites:    newFakeFavoriteRepo(),
		cache:        &fakeStatsCache{},
	}
	f.svc = NewService(f.slangRepo, f.votes, f.translations, f.favorites, fakeTransactor{}, nil, f.cache, maxPerDay)
	return f
}

var (
	member    = entity.Actor{UserID: "user-1", Role: entity.UserRoleUser}
	moderator = entity.Actor{UserID: "mod-1", Role: entity.UserRoleModerator}
)

func TestCreateRejectsBlankTermOrMeaning(t *testing.T) {
	f := newServiceFixture(5)

	for _, in := range []CreateInput{
		{Term: "  ", Meaning: "something"},
		{Term: "ghost", Meaning: "\t"},
	} {
		_, err := f.svc.Create(context.Background(), member, in)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
	}
}

func TestCreatePendingWithSubmitterUpvote(t *testing.T) {
	f := newServiceFixture(5)

	slang, err := f.svc.Create(context.Background(), member, CreateInput{Term: " ghost ", Meaning: "to disappear"})
	require.NoError(t, err)
	assert.False(t, slang.IsVerified)
	assert.Equal(t, "ghost", slang.Term)
	assert.Equal(t, member.UserID, slang.SubmittedBy)

	// 提交即为自己的词条投下一票赞成
	vote, err := f.votes.GetByUserAndTerm(context.Background(), member.UserID, slang.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VoteUp, vote.Vote)
}

func TestCreateModeratorAutoVerified(t *testing.T) {
	f := newServiceFixture(5)

	slang, err := f.svc.Create(context.Background(), moderator, CreateInput{Term: "lit", Meaning: "amazing"})
	require.NoError(t, err)
	assert.True(t, slang.IsVerified)
}

func TestCreateRejectsDuplicateTermCaseInsensitive(t *testing.T) {
	f := newServiceFixture(5)
	_, err := f.svc.Create(context.Background(), member, CreateInput{Term: "Ghost", Meaning: "to disappear"})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), moderator, CreateInput{Term: "ghost", Meaning: "to vanish"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

func TestCreateEnforcesDailySubmissionLimit(t *testing.T) {
	f := newServiceFixture(2)
	_, err := f.svc.Create(context.Background(), member, CreateInput{Term: "ghost", Meaning: "to disappear"})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), member, CreateInput{Term: "lit", Meaning: "amazing"})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), member, CreateInput{Term: "salty", Meaning: "annoyed"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSubmissionLimit, apperrors.AsAppError(err).Code)

	// 审核员不受每日上限约束
	_, err = f.svc.Create(context.Background(), moderator, CreateInput{Term: "cap", Meaning: "a lie"})
	require.NoError(t, err)
}

func TestGetHidesUnverifiedFromStrangers(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", SubmittedBy: member.UserID,
	})

	// 无关用户看不到未过审词条的存在
	_, err := f.svc.Get(context.Background(), entity.Actor{UserID: "user-2", Role: entity.UserRoleUser}, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTermNotFound, apperrors.AsAppError(err).Code)

	out, err := f.svc.Get(context.Background(), member, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)

	_, err = f.svc.Get(context.Background(), moderator, 1)
	require.NoError(t, err)
}

func TestGetAttachesNetVotes(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{ID: 1, Term: "lit", Meaning: "amazing", IsVerified: true})
	require.NoError(t, f.votes.Create(context.Background(), &entity.SlangVote{SlangID: 1, UserID: "a", Vote: entity.VoteUp}))
	require.NoError(t, f.votes.Create(context.Background(), &entity.SlangVote{SlangID: 1, UserID: "b", Vote: entity.VoteUp}))
	require.NoError(t, f.votes.Create(context.Background(), &entity.SlangVote{SlangID: 1, UserID: "c", Vote: entity.VoteDown}))

	out, err := f.svc.Get(context.Background(), entity.Actor{}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Votes)
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", IsVerified: true, SubmittedBy: member.UserID,
	})

	meaning := "something else"
	_, err := f.svc.Update(context.Background(), entity.Actor{UserID: "user-2", Role: entity.UserRoleUser}, 1, UpdateInput{Meaning: &meaning})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestUpdateMeaningInvalidatesEmbeddingAndResetsVerification(t *testing.T) {
	term := &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", IsVerified: true, SubmittedBy: member.UserID,
	}
	term.SetEmbedding([]float32{0.1, 0.2})
	f := newServiceFixture(5, term)

	meaning := "to vanish without a word"
	updated, err := f.svc.Update(context.Background(), member, 1, UpdateInput{Meaning: &meaning})
	require.NoError(t, err)

	// 普通用户的编辑回到待审状态，内容变更清空向量缓存
	assert.False(t, updated.IsVerified)
	assert.Nil(t, updated.Embedding)
	assert.Empty(t, updated.VectorHash)
	assert.Equal(t, meaning, updated.Meaning)
}

func TestUpdateModeratorMetadataKeepsEmbedding(t *testing.T) {
	term := &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", IsVerified: true, SubmittedBy: member.UserID,
	}
	term.SetEmbedding([]float32{0.1, 0.2})
	f := newServiceFixture(5, term)

	origin := "1990s internet slang"
	updated, err := f.svc.Update(context.Background(), moderator, 1, UpdateInput{Origin: &origin})
	require.NoError(t, err)

	// 非内容字段不触发缓存失效，审核员编辑保持过审状态
	assert.True(t, updated.IsVerified)
	assert.NotEmpty(t, updated.Embedding)
	assert.True(t, updated.HasFreshEmbedding())
	assert.Equal(t, origin, updated.Origin)
}

func TestDeleteCascadesVotesTranslationsFavorites(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", IsVerified: true, SubmittedBy: member.UserID,
	})
	ctx := context.Background()
	require.NoError(t, f.votes.Create(ctx, &entity.SlangVote{SlangID: 1, UserID: "a", Vote: entity.VoteUp}))
	require.NoError(t, f.translations.Upsert(ctx, &entity.SlangTranslation{SlangID: 1, Language: "es", Translation: "desaparecer"}))
	require.NoError(t, f.favorites.Add(ctx, "a", 1))

	require.NoError(t, f.svc.Delete(ctx, member, 1))

	_, err := f.slangRepo.GetByID(ctx, 1)
	assert.Error(t, err)
	sum, err := f.votes.SumByTerm(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, sum)
	trs, err := f.translations.ListByTerm(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, trs)
	favorited, err := f.favorites.Exists(ctx, "a", 1)
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestDeleteForbiddenForNonOwner(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", SubmittedBy: member.UserID,
	})

	err := f.svc.Delete(context.Background(), entity.Actor{UserID: "user-2", Role: entity.UserRoleUser}, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", SubmittedBy: member.UserID,
	})

	first, err := f.svc.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.IsVerified)

	again, err := f.svc.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, again.IsVerified)
}

func TestMembershipChangesInvalidateStatsCaches(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", SubmittedBy: member.UserID,
	})
	ctx := context.Background()

	// 提交、过审、删除都改变统计口径，各触发一次失效
	_, err := f.svc.Create(ctx, member, CreateInput{Term: "lit", Meaning: "amazing"})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, member, 1))

	assert.Equal(t, 3, f.cache.statsInvalidations)
	assert.Equal(t, 3, f.cache.trendingInvalidations)
}

func TestMetadataUpdateDoesNotInvalidateStatsCaches(t *testing.T) {
	f := newServiceFixture(5, &entity.SlangTerm{
		ID: 1, Term: "ghost", Meaning: "to disappear", IsVerified: true, SubmittedBy: member.UserID,
	})

	origin := "1990s internet slang"
	_, err := f.svc.Update(context.Background(), moderator, 1, UpdateInput{Origin: &origin})
	require.NoError(t, err)

	// 过审状态未变化的编辑交给 TTL，不主动失效
	assert.Zero(t, f.cache.statsInvalidations)
	assert.Zero(t, f.cache.trendingInvalidations)
}
