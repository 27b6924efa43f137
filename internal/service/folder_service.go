package service

import (
	"context"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
)

// FolderService 文件夹业务服务接口
type FolderService interface {
	// List 按字典序返回文件夹名称
	List(ctx context.Context) ([]string, error)
	// Add 新增文件夹，返回规范化后的名称
	Add(ctx context.Context, name string) (string, error)
	// Rename 重命名文件夹并级联改写笔记引用，返回规范化后的新名称
	Rename(ctx context.Context, oldName, newName string) (string, error)
	// Exists 判断文件夹是否存在
	Exists(ctx context.Context, name string) (bool, error)
	// EnsureDefaults 文件夹表为空时插入默认文件夹
	EnsureDefaults(ctx context.Context, names []string) error
}

type folderService struct {
	repo   domain.FolderRepository
	store  NoteStore
	logger *zap.Logger
}

// NewFolderService 创建 FolderService 实例
func NewFolderService(repo domain.FolderRepository, store NoteStore, logger *zap.Logger) FolderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &folderService{repo: repo, store: store, logger: logger}
}

func (s *folderService) List(ctx context.Context) ([]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(code.ErrorStorage, "folder_list", err)
	}
	names := make([]string, 0, len(rows))
	for _, f := range rows {
		names = append(names, f.Name)
	}
	return names, nil
}

func validateFolderName(raw string) (string, error) {
	name := domain.NormalizeFolderName(raw)
	if name == "" {
		return "", code.ErrorFolderNameEmpty
	}
	if domain.IsReservedFolderName(name) {
		return "", code.ErrorFolderNameReserved.WithDetails(name)
	}
	return name, nil
}

func (s *folderService) Add(ctx context.Context, raw string) (string, error) {
	name, err := validateFolderName(raw)
	if err != nil {
		return "", err
	}
	if err := s.repo.Insert(ctx, &domain.Folder{Name: name}); err != nil {
		if isDuplicate(err) {
			return "", code.ErrorFolderExists.WithDetails(name)
		}
		return "", storageError(code.ErrorStorageWrite, "folder_insert", err)
	}
	s.logger.Info("folder added", zap.String(logger.FieldFolder, name))
	return name, nil
}

func (s *folderService) Rename(ctx context.Context, rawOld, rawNew string) (string, error) {
	oldName := domain.NormalizeFolderName(rawOld)
	if oldName == "" {
		return "", code.ErrorFolderNameEmpty
	}
	newName, err := validateFolderName(rawNew)
	if err != nil {
		return "", err
	}
	if oldName == newName {
		return newName, nil
	}

	affected, err := s.repo.RenameCascade(ctx, oldName, newName)
	if err != nil {
		switch {
		case isNotFound(err):
			return "", code.ErrorFolderNotFound.WithDetails(oldName)
		case isDuplicate(err):
			return "", code.ErrorFolderExists.WithDetails(newName)
		default:
			// 事务已回滚，内存不做任何修改
			return "", storageError(code.ErrorStorageWrite, "folder_rename", err)
		}
	}

	changed := s.store.RenameFolderRefs(oldName, newName)
	s.logger.Info("folder renamed",
		zap.String(logger.FieldFolder, newName),
		zap.String("from", oldName),
		zap.Int64("rows", affected),
		zap.Int(logger.FieldCount, changed),
	)
	return newName, nil
}

func (s *folderService) Exists(ctx context.Context, name string) (bool, error) {
	names, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *folderService) EnsureDefaults(ctx context.Context, names []string) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return storageError(code.ErrorStorage, "folder_count", err)
	}
	if count > 0 {
		return nil
	}
	for _, n := range names {
		if _, err := s.Add(ctx, n); err != nil {
			if code.KindOf(err) == code.KindDuplicateFolder {
				continue
			}
			return err
		}
	}
	return nil
}
