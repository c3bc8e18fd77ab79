package browser

// Page-side probes executed through Runtime.callFunctionOn with the element
// bound as `this`. Kept here so the Go code stays free of inline script
// soup.

// isVisibleJS mirrors what a user can actually see: computed style plus a
// non-empty box. Matches the classic WebDriver displayedness checks closely
// enough for gating purposes.
const isVisibleJS = `function() {
	const style = window.getComputedStyle(this);
	if (style.visibility === 'hidden' || style.display === 'none') return false;
	if (style.opacity !== '' && parseFloat(style.opacity) === 0) return false;
	const rect = this.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

const isEnabledJS = `function() {
	return !this.disabled && this.getAttribute('aria-disabled') !== 'true';
}`

const isSelectedJS = `function() {
	return !!(this.checked || this.selected);
}`

const innerTextJS = `function() { return this.innerText; }`

// clearJS empties an input the way a user would, so frameworks listening for
// input/change events notice.
const clearJS = `function() {
	if ('value' in this) {
		this.value = '';
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	} else {
		this.textContent = '';
	}
}`

const submitJS = `function() {
	const form = this.tagName === 'FORM' ? this : (this.form || this.closest('form'));
	if (!form) throw new Error('element is not in a form');
	form.submit();
}`
