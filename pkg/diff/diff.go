// Package diff builds and applies diff-match-patch text patches
// Package diff 生成并应用 diff-match-patch 文本补丁
package diff

import (
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrPatchRejected is returned when at least one hunk fails to apply
// ErrPatchRejected 至少一个补丁块应用失败时返回
var ErrPatchRejected = errors.New("patch rejected")

// MakePatch returns the textual patch turning base into target
// MakePatch 返回把 base 变为 target 的文本补丁
func MakePatch(base, target string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, target, false)
	// 语义清理，让补丁对人类更可读
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.PatchToText(dmp.PatchMake(base, diffs))
}

// ApplyPatch applies a textual patch to base. Every hunk must apply.
// ApplyPatch 把文本补丁应用到 base；所有补丁块都必须成功
func ApplyPatch(base, patchText string) (string, error) {
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patchText)
	if err != nil {
		return base, errors.Wrap(err, "parse patch failed")
	}
	if len(patches) == 0 {
		return base, nil
	}

	result, applied := dmp.PatchApply(patches, base)
	for _, ok := range applied {
		if !ok {
			return base, ErrPatchRejected
		}
	}
	return result, nil
}
