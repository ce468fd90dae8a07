package ast

import (
	"reflect"
	"testing"
)

func ident(name string) *Node {
	return &Node{Kind: KindIdentifier, Name: name}
}

func member(object, property string) *Node {
	n := &Node{Kind: KindMemberExpression, Object: ident(object), Property: ident(property)}
	n.Append(n.Object)
	n.Append(n.Property)
	return n
}

func TestWalk_PreOrder(t *testing.T) {
	program := &Node{Kind: KindProgram}
	first := member("a", "b")
	second := member("c", "d")
	program.Append(first)
	program.Append(second)

	var names []string
	Walk(program, func(node *Node) bool {
		switch node.Kind {
		case KindProgram:
			names = append(names, "program")
		case KindMemberExpression:
			names = append(names, "member")
		case KindIdentifier:
			names = append(names, node.Name)
		}
		return true
	})

	want := []string{"program", "member", "a", "b", "member", "c", "d"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected order %v, want %v", names, want)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	program := &Node{Kind: KindProgram}
	program.Append(member("a", "b"))

	visited := 0
	Walk(program, func(node *Node) bool {
		visited++
		return node.Kind != KindMemberExpression
	})
	if visited != 2 {
		t.Fatalf("expected 2 visited nodes, got %d", visited)
	}
}

func TestDispatch_CallsTablesInOrder(t *testing.T) {
	program := &Node{Kind: KindProgram}
	program.Append(member("module", "exports"))

	var calls []string
	first := Handlers{
		KindMemberExpression: func(node *Node) { calls = append(calls, "first:"+node.Object.Name) },
	}
	second := Handlers{
		KindMemberExpression: func(node *Node) { calls = append(calls, "second:"+node.Object.Name) },
		KindIdentifier:       func(node *Node) { calls = append(calls, "ident:"+node.Name) },
	}

	Dispatch(program, first, nil, second)

	want := []string{"first:module", "second:module", "ident:module", "ident:exports"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("unexpected calls %v, want %v", calls, want)
	}
}

func TestBindingIdentifiers_Patterns(t *testing.T) {
	// { a, b: [c, ...d], e = 1 }
	pattern := &Node{Kind: KindObjectPattern, Elements: []*Node{
		{Kind: KindPropertyPattern, Target: ident("a")},
		{Kind: KindPropertyPattern, Target: &Node{Kind: KindArrayPattern, Elements: []*Node{
			ident("c"),
			{Kind: KindRestElement, Target: ident("d")},
		}}},
		{Kind: KindAssignmentPattern, Target: ident("e")},
	}}

	var names []string
	for _, id := range BindingIdentifiers(pattern) {
		names = append(names, id.Name)
	}
	want := []string{"a", "c", "d", "e"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected bindings %v, want %v", names, want)
	}
}

func TestFind(t *testing.T) {
	program := &Node{Kind: KindProgram}
	program.Append(member("a", "b"))
	program.Append(member("module", "exports"))

	found := Find(program, func(node *Node) bool { return node.IsIdentifier("module") })
	if found == nil || found.Name != "module" {
		t.Fatalf("expected to find module identifier, got %+v", found)
	}
	if Find(program, func(node *Node) bool { return node.IsIdentifier("missing") }) != nil {
		t.Fatal("expected no match")
	}
}
