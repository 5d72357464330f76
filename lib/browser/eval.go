package browser

import (
	"encoding/json"
	"strings"
)

// regionAttr marks the currently pinned extraction region in the live
// document. Re-marking removes the attribute from any prior holder, so
// the returned selector stays unambiguous across region changes.
const regionAttr = "data-uiharvest-region"

// jsCall wraps a function expression into an immediately invoked call
// with JSON-encoded arguments.
func jsCall(fn string, args ...any) string {
	encoded := make([]string, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			// arguments are strings and ints, Marshal cannot fail on them
			panic(err)
		}
		encoded[i] = string(b)
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")"
}

const jsIsVisible = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return false;
	return !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
}`

const jsCount = `(sel) => document.querySelectorAll(sel).length`

const jsTextNth = `(sel, i) => {
	const el = document.querySelectorAll(sel)[i];
	if (!el) throw new Error("no element at index " + i + " of " + sel);
	return el.innerText;
}`

const jsClickNth = `(sel, i) => {
	const el = document.querySelectorAll(sel)[i];
	if (!el) throw new Error("no element at index " + i + " of " + sel);
	el.scrollIntoView({block: "center"});
	el.click();
	return true;
}`

const jsAncestors = `(sel, max) => {
	const el = document.querySelector(sel);
	if (!el) throw new Error("no element matches " + sel);
	const out = [];
	let node = el.parentElement;
	while (node && out.length < max) {
		out.push({
			tag: node.tagName.toLowerCase(),
			id: node.id || "",
			class: node.getAttribute("class") || "",
			style: node.getAttribute("style") || "",
		});
		node = node.parentElement;
	}
	return out;
}`

const jsMarkRegion = `(sel, level, attr) => {
	for (const prev of document.querySelectorAll("[" + attr + "]")) {
		prev.removeAttribute(attr);
	}
	if (level < 0) return "html";
	const el = document.querySelector(sel);
	if (!el) throw new Error("no element matches " + sel);
	let node = el;
	for (let i = 0; i < level; i++) {
		if (!node.parentElement) break;
		node = node.parentElement;
	}
	node.setAttribute(attr, "1");
	return "[" + attr + "]";
}`

// jsSnapshotNth serializes a subtree with live form state folded into
// the markup, so a detached parse of the HTML still sees the values the
// user-visible page holds.
const jsSnapshotNth = `(sel, i) => {
	const root = document.querySelectorAll(sel)[i];
	if (!root) throw new Error("no element at index " + i + " of " + sel);
	const clone = root.cloneNode(true);
	const live = root.querySelectorAll("input, textarea, select");
	const copy = clone.querySelectorAll("input, textarea, select");
	for (let j = 0; j < live.length; j++) {
		const src = live[j];
		const dst = copy[j];
		if (!dst) continue;
		const tag = src.tagName.toLowerCase();
		if (tag === "input") {
			dst.setAttribute("value", src.value);
			if (src.checked) {
				dst.setAttribute("checked", "");
			} else {
				dst.removeAttribute("checked");
			}
		} else if (tag === "textarea") {
			dst.textContent = src.value;
		} else {
			const opts = src.querySelectorAll("option");
			const copts = dst.querySelectorAll("option");
			for (let k = 0; k < opts.length; k++) {
				if (!copts[k]) continue;
				if (k === src.selectedIndex) {
					copts[k].setAttribute("selected", "");
				} else {
					copts[k].removeAttribute("selected");
				}
			}
		}
	}
	return clone.outerHTML;
}`
