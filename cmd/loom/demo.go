package main

import (
	"fmt"

	"github.com/loom-ui/loom/pkg/element"
	"github.com/loom-ui/loom/pkg/fiber"
	"github.com/loom-ui/loom/pkg/host/memhost"
)

// demoApp is the root component for loom serve: a counter, a removable item
// list, and a status line recomputed by an effect whenever the count changes.
func demoApp(ctx *fiber.Ctx, _ element.Props) *element.Element {
	count, setCount := fiber.UseState(ctx, 0)
	items, setItems := fiber.UseState(ctx, []string{"alpha", "beta", "gamma"})
	status, setStatus := fiber.UseState(ctx, "")

	fiber.UseEffect(ctx, func() fiber.Cleanup {
		setStatus.Set(fmt.Sprintf("count is %d, %d items", count, len(items)))
		return nil
	}, fiber.Deps(count, len(items)))

	list := make([]any, 0, len(items))
	for i, it := range items {
		idx := i
		list = append(list, element.Li(element.Props{
			"onClick": func(memhost.Event) {
				setItems.Update(func(prev []string) []string {
					next := make([]string, 0, len(prev)-1)
					next = append(next, prev[:idx]...)
					return append(next, prev[idx+1:]...)
				})
			},
		}, it+" (click to remove)"))
	}

	return element.Div(element.Props{"id": "demo"},
		element.H1(nil, "loom demo"),
		element.P(element.Props{"id": "status"}, status),
		element.Button(element.Props{
			"id": "inc",
			"onClick": func(memhost.Event) {
				setCount.Update(func(n int) int { return n + 1 })
			},
		}, fmt.Sprintf("clicked %d times", count)),
		element.Ul(element.Props{"id": "items"}, list...),
	)
}
