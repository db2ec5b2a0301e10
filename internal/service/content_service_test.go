// internal/service/content_service_test.go
package service

import (
	"context"
	"testing"

	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newContentTestService(db *gorm.DB) ContentService {
	return NewContentService(
		db,
		repository.NewGormCategoryRepository(),
		repository.NewGormContentBlockRepository(),
	)
}

// --- Test Category ---
func Test_contentService_Categories(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newContentTestService(db)

	tenant := createTestTenantRow(t, db)
	other := createTestTenantRow(t, db)

	t.Run("正常系: カテゴリ作成とデフォルトカラー", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, tenant.TenantID, &model.CreateCategoryRequest{
			Name: "人事",
			Slug: "hr",
		})
		require.NoError(t, err)
		assert.Equal(t, "#6B7280", category.Color) // 未指定時のデフォルト
		assert.Equal(t, tenant.TenantID, category.TenantID)
	})

	t.Run("正常系: 別テナントなら同じslugを使える", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, other.TenantID, &model.CreateCategoryRequest{
			Name:  "人事",
			Slug:  "hr",
			Color: "#FF0000",
		})
		require.NoError(t, err)
	})

	t.Run("異常系: 同一テナント内のslug重複はErrConflict", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, tenant.TenantID, &model.CreateCategoryRequest{
			Name: "人事部",
			Slug: "hr",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConflict)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DUPLICATE_SLUG", appErr.Code)
	})

	t.Run("正常系: 一覧は自テナント分のみ", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, tenant.TenantID, &model.CreateCategoryRequest{
			Name: "セキュリティ",
			Slug: "security",
		})
		require.NoError(t, err)

		categories, err := svc.ListCategories(ctx, tenant.TenantID)
		require.NoError(t, err)
		assert.Len(t, categories, 2)
	})

	t.Run("正常系: 削除", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, tenant.TenantID, &model.CreateCategoryRequest{
			Name: "削除予定",
			Slug: "to-delete",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCategory(ctx, tenant.TenantID, category.CategoryID))

		categories, err := svc.ListCategories(ctx, tenant.TenantID)
		require.NoError(t, err)
		for _, c := range categories {
			assert.NotEqual(t, category.CategoryID, c.CategoryID)
		}
	})

	t.Run("異常系: 他テナントのカテゴリは削除できない", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, other.TenantID, &model.CreateCategoryRequest{
			Name: "他社カテゴリ",
			Slug: "other-only",
		})
		require.NoError(t, err)

		err = svc.DeleteCategory(ctx, tenant.TenantID, category.CategoryID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test ContentBlock ---
func Test_contentService_ContentBlocks(t *testing.T) {
	ctx := context.Background()
	db := setupAssignmentTestDB(t)
	svc := newContentTestService(db)

	tenant := createTestTenantRow(t, db)
	category, err := svc.CreateCategory(ctx, tenant.TenantID, &model.CreateCategoryRequest{
		Name: "オリエンテーション",
		Slug: "orientation",
	})
	require.NoError(t, err)

	t.Run("正常系: ブロック作成", func(t *testing.T) {
		block, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			CategoryID:  &category.CategoryID,
			Title:       "就業規則",
			ContentType: model.ContentTypeText,
			ContentText: "就業規則の本文です。",
			Tags:        "規則,人事",
			IsPublished: true,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, block.BlockID)
		require.NotNil(t, block.CategoryID)
		assert.Equal(t, category.CategoryID, *block.CategoryID)
	})

	t.Run("異常系: 存在しないカテゴリを指定するとErrNotFound", func(t *testing.T) {
		ghost := uuid.New()
		_, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			CategoryID:  &ghost,
			Title:       "迷子のブロック",
			ContentType: model.ContentTypeText,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CATEGORY_NOT_FOUND", appErr.Code)
	})

	t.Run("正常系: カテゴリ・検索語での絞り込み", func(t *testing.T) {
		_, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			Title:       "社内ツール紹介動画",
			ContentType: model.ContentTypeVideo,
			ContentURL:  "https://example.com/videos/tools",
			Tags:        "動画,ツール",
		})
		require.NoError(t, err)

		// カテゴリ絞り込み
		blocks, err := svc.ListContentBlocks(ctx, tenant.TenantID, &category.CategoryID, "")
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		assert.Equal(t, "就業規則", blocks[0].Title)

		// タイトル・タグの部分一致検索
		blocks, err = svc.ListContentBlocks(ctx, tenant.TenantID, nil, "ツール")
		require.NoError(t, err)
		require.Len(t, blocks, 1)
		assert.Equal(t, "社内ツール紹介動画", blocks[0].Title)

		// 絞り込みなしは全件
		blocks, err = svc.ListContentBlocks(ctx, tenant.TenantID, nil, "")
		require.NoError(t, err)
		assert.Len(t, blocks, 2)
	})

	t.Run("正常系: 部分更新", func(t *testing.T) {
		block, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			Title:       "更新前タイトル",
			ContentType: model.ContentTypeText,
			ContentText: "更新前の本文",
		})
		require.NoError(t, err)

		newTitle := "更新後タイトル"
		published := true
		updated, err := svc.UpdateContentBlock(ctx, tenant.TenantID, block.BlockID, &model.UpdateContentBlockRequest{
			Title:       &newTitle,
			IsPublished: &published,
		})
		require.NoError(t, err)
		assert.Equal(t, "更新後タイトル", updated.Title)
		assert.True(t, updated.IsPublished)
		// 未指定フィールドは据え置き
		assert.Equal(t, "更新前の本文", updated.ContentText)
	})

	t.Run("異常系: 更新時に存在しないカテゴリを指定", func(t *testing.T) {
		block, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			Title:       "カテゴリ変更対象",
			ContentType: model.ContentTypeText,
		})
		require.NoError(t, err)

		ghost := uuid.New()
		_, err = svc.UpdateContentBlock(ctx, tenant.TenantID, block.BlockID, &model.UpdateContentBlockRequest{
			CategoryID: &ghost,
		})
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CATEGORY_NOT_FOUND", appErr.Code)
	})

	t.Run("正常系: 論理削除後は取得できない", func(t *testing.T) {
		block, err := svc.CreateContentBlock(ctx, tenant.TenantID, &model.CreateContentBlockRequest{
			Title:       "削除対象",
			ContentType: model.ContentTypeText,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContentBlock(ctx, tenant.TenantID, block.BlockID))

		_, err = svc.GetContentBlock(ctx, tenant.TenantID, block.BlockID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("異常系: 他テナントのブロックは見えない", func(t *testing.T) {
		other := createTestTenantRow(t, db)
		block, err := svc.CreateContentBlock(ctx, other.TenantID, &model.CreateContentBlockRequest{
			Title:       "他社の資料",
			ContentType: model.ContentTypeText,
		})
		require.NoError(t, err)

		_, err = svc.GetContentBlock(ctx, tenant.TenantID, block.BlockID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
