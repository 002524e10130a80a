package application

import (
	"context"
	"net/http"
)

// fetchAllPages 沿着游标分页抓取一个列表资源直到穷尽。
//
// 每一页都应当是 {"results": [...], "next": <url|null>} 形态的对象:
// results 按页序、页内序累积；next 为 null/缺失或响应不符合该形态时终止。
// 任何一页的调用或映射失败都使整次抓取失败，已累积的页被丢弃——
// 调用方拿到的要么是完整列表，要么什么都没有。
func fetchAllPages[T any](
	ctx context.Context,
	exec Executor,
	startURL string,
	mapList func([]any) ([]T, error),
) ([]T, error) {

	var out []T
	pageURL := startURL

	for pageURL != "" {
		resp, err := exec.Execute(ctx, http.MethodGet, pageURL, nil, nil, nil)
		if err != nil {
			return nil, err
		}

		obj, ok := resp.Object()
		if !ok {
			break
		}
		nextValue, hasNext := obj["next"]
		resultsValue, hasResults := obj["results"]
		if !hasNext || !hasResults {
			break
		}
		results, ok := resultsValue.([]any)
		if !ok {
			break
		}

		mapped, err := mapList(results)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped...)

		next, _ := nextValue.(string)
		pageURL = next
	}

	return out, nil
}

// fetchOnePage 只取第一页，不追 next。
func fetchOnePage[T any](
	ctx context.Context,
	exec Executor,
	pageURL string,
	mapList func([]any) ([]T, error),
) ([]T, error) {

	resp, err := exec.Execute(ctx, http.MethodGet, pageURL, nil, nil, nil)
	if err != nil {
		return nil, err
	}

	obj, ok := resp.Object()
	if !ok {
		return nil, nil
	}
	_, hasNext := obj["next"]
	resultsValue, hasResults := obj["results"]
	if !hasNext || !hasResults {
		return nil, nil
	}
	results, ok := resultsValue.([]any)
	if !ok {
		return nil, nil
	}

	return mapList(results)
}
