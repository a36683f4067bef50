package inspect

// Page-context inspection scripts. Each runs inside the browser via
// Evaluate and returns plain JSON. Treated as opaque strings by the Go
// side; the result shapes mirror the domain capture types.

const domCaptureScript = `(() => {
	const ui_elements = [];
	document.querySelectorAll('button, a, input, select, textarea').forEach(el => {
		const rect = el.getBoundingClientRect();
		ui_elements.push({
			tag: el.tagName.toLowerCase(),
			type: el.type || 'clickable',
			text: (el.innerText || el.value || '').substring(0, 100),
			id: el.id || '',
			visible: rect.width > 0 && rect.height > 0 &&
				window.getComputedStyle(el).visibility !== 'hidden' &&
				window.getComputedStyle(el).display !== 'none',
			enabled: !el.disabled,
			required: el.required || false,
			attributes: {
				placeholder: el.placeholder || '',
				name: el.name || '',
				class: (el.className || '').toString().substring(0, 100),
				aria_label: el.getAttribute('aria-label') || ''
			}
		});
	});

	const forms = [];
	const formSignatures = new Set();
	document.querySelectorAll('form').forEach(form => {
		const style = window.getComputedStyle(form);
		const rect = form.getBoundingClientRect();
		if (style.display === 'none' || style.visibility === 'hidden' ||
			rect.width === 0 || rect.height === 0) return;
		const inputs = Array.from(form.querySelectorAll('input, select, textarea'));
		const visibleFields = inputs.filter(i => {
			const fs = window.getComputedStyle(i);
			const fr = i.getBoundingClientRect();
			return i.type !== 'hidden' && fs.display !== 'none' &&
				fs.visibility !== 'hidden' && fr.width > 0 && fr.height > 0;
		});
		if (visibleFields.length === 0) return;
		const signature = visibleFields
			.map(i => i.tagName + '-' + (i.name || i.type || 'unknown'))
			.sort().join('|');
		if (!formSignatures.has(signature)) {
			formSignatures.add(signature);
			forms.push({
				action: form.action || '',
				method: (form.method || 'GET').toUpperCase(),
				fields: visibleFields.map(i => ({
					tag: i.tagName.toLowerCase(),
					type: i.type || '',
					name: i.name || '',
					required: i.required || false,
					placeholder: i.placeholder || ''
				})),
				fields_count: visibleFields.length
			});
		}
	});

	const dropdowns = [];
	document.querySelectorAll('select').forEach(el => {
		dropdowns.push({
			type: 'native', trigger_tag: 'select',
			name: el.name || '', options_count: el.options.length,
			visible: el.offsetParent !== null,
			accessibility: (el.labels && el.labels.length) ? 'label-linked' : 'no-label'
		});
	});
	document.querySelectorAll('[aria-expanded]').forEach(trigger => {
		const tag = trigger.tagName.toLowerCase();
		if (!['button', 'a'].includes(tag)) return;
		const controls = trigger.getAttribute('aria-controls');
		let container = controls ? document.getElementById(controls) : null;
		dropdowns.push({
			type: 'structured', trigger_tag: tag,
			expanded: trigger.getAttribute('aria-expanded') === 'true',
			has_container: !!container,
			container_role: container ? (container.getAttribute('role') || '') : '',
			visible: trigger.offsetParent !== null
		});
	});

	const pagination = [];
	document.querySelectorAll('nav, ul, div').forEach(container => {
		const text = container.innerText || '';
		if (text.match(/\b1\b.*\b2\b/) ||
			text.toLowerCase().includes('next') ||
			text.toLowerCase().includes('prev')) {
			const links = Array.from(container.querySelectorAll('a'))
				.map(a => ({ text: a.innerText.trim(), href: a.href }))
				.filter(a => a.text.length > 0);
			if (links.length > 1) {
				pagination.push({ type: 'numbered', links: links.slice(0, 20) });
			}
		}
	});

	const nav_menus = [];
	document.querySelectorAll('nav, [role="navigation"], header').forEach(nav => {
		const links = Array.from(nav.querySelectorAll('a'))
			.map(a => ({ text: a.innerText.trim(), href: a.href }))
			.filter(a => a.text.length > 0 && a.text.length < 80);
		if (links.length > 0) {
			nav_menus.push({
				tag: nav.tagName.toLowerCase(),
				link_count: links.length,
				links: links.slice(0, 20)
			});
		}
	});

	const tabs = [];
	document.querySelectorAll('[role="tablist"]').forEach(tablist => {
		const tab_items = Array.from(tablist.querySelectorAll('[role="tab"]'));
		const active = tab_items.find(t => t.getAttribute('aria-selected') === 'true');
		tabs.push({
			tab_count: tab_items.length,
			active_tab: (active ? (active.textContent || '') : '').trim().substring(0, 60),
			items: tab_items.map(t => t.textContent.trim().substring(0, 60))
		});
	});

	const modals = [];
	document.querySelectorAll('[role="dialog"], .modal, [aria-modal="true"]').forEach(modal => {
		const style = window.getComputedStyle(modal);
		modals.push({
			visible: style.display !== 'none' && style.visibility !== 'hidden',
			has_close: !!modal.querySelector('[aria-label*="close"], [class*="close"], button'),
			has_aria_modal: modal.getAttribute('aria-modal') === 'true',
			has_aria_labelledby: !!modal.getAttribute('aria-labelledby')
		});
	});

	const accordions = [];
	document.querySelectorAll('[data-toggle="collapse"], details, [aria-expanded]').forEach(el => {
		if (el.tagName === 'DETAILS' || el.getAttribute('data-toggle') === 'collapse') {
			accordions.push({
				tag: el.tagName.toLowerCase(),
				open: el.open || el.getAttribute('aria-expanded') === 'true',
				has_summary: !!el.querySelector('summary')
			});
		}
	});

	const breadcrumbs_el = document.querySelector(
		'[aria-label="breadcrumb"], nav.breadcrumb, ol.breadcrumb, .breadcrumbs'
	);
	const breadcrumbs = breadcrumbs_el
		? { found: true, item_count: breadcrumbs_el.querySelectorAll('li, a').length }
		: { found: false, item_count: 0 };

	const sidebar_el = document.querySelector('aside, [role="complementary"], .sidebar, #sidebar');
	const sidebar = sidebar_el
		? { found: true, visible: window.getComputedStyle(sidebar_el).display !== 'none' }
		: { found: false, visible: false };

	const ui_summary = {
		buttons: document.querySelectorAll('button, [role="button"]').length,
		links: document.querySelectorAll('a[href]').length,
		inputs: document.querySelectorAll('input:not([type="hidden"])').length,
		selects: document.querySelectorAll('select').length,
		textareas: document.querySelectorAll('textarea').length,
		images: document.querySelectorAll('img').length,
		videos: document.querySelectorAll('video').length,
		iframes: document.querySelectorAll('iframe').length,
		nav_menus: document.querySelectorAll('nav, [role="navigation"]').length,
		modals: document.querySelectorAll('[role="dialog"], [aria-modal="true"]').length,
		tab_lists: document.querySelectorAll('[role="tablist"]').length,
		accordions: document.querySelectorAll('details').length
	};

	return {
		ui_elements: ui_elements.slice(0, 200), ui_summary,
		forms, dropdowns, pagination, nav_menus, tabs, modals,
		accordions, breadcrumbs, sidebar
	};
})()`

const performanceScript = `(() => {
	const nav = performance.getEntriesByType('navigation')[0] || null;
	const paintEntries = performance.getEntriesByType('paint') || [];

	let fcp = null;
	paintEntries.forEach(entry => {
		if (entry.name === 'first-contentful-paint') fcp = entry.startTime;
	});

	const lcpEntries = performance.getEntriesByType('largest-contentful-paint');
	const lcp = (lcpEntries && lcpEntries.length > 0)
		? lcpEntries[lcpEntries.length - 1].startTime
		: null;

	const ttfb = nav ? (nav.responseStart - nav.requestStart) : null;
	const dom_interactive = nav ? nav.domInteractive : null;
	const dom_complete = nav ? nav.domComplete : null;
	const load_event_end = nav ? nav.loadEventEnd : null;
	const dom_content_loaded = nav
		? (nav.domContentLoadedEventEnd - nav.domContentLoadedEventStart)
		: null;

	const resources = performance.getEntriesByType('resource') || [];
	const js_count = resources.filter(r => r.initiatorType === 'script').length;
	const css_count = resources.filter(r => r.initiatorType === 'link' || r.name.endsWith('.css')).length;
	const img_count = resources.filter(r => r.initiatorType === 'img').length;
	const total_transfer = resources.reduce((s, r) => s + (r.transferSize || 0), 0);

	const blocking_scripts = document.querySelectorAll(
		'head script:not([async]):not([defer]):not([type="module"])'
	).length;
	const blocking_css = document.querySelectorAll('head link[rel="stylesheet"]').length;

	return {
		ttfb_ms: ttfb !== null ? Math.max(0, ttfb) : null,
		dom_interactive_ms: dom_interactive !== null ? Math.max(0, dom_interactive) : null,
		dom_complete_ms: dom_complete !== null ? Math.max(0, dom_complete) : null,
		load_event_end_ms: load_event_end !== null ? Math.max(0, load_event_end) : null,
		dom_content_loaded_ms: dom_content_loaded !== null ? Math.max(0, dom_content_loaded) : null,
		fcp_ms: fcp !== null ? Math.max(0, fcp) : null,
		lcp_ms: lcp !== null ? Math.max(0, lcp) : null,
		resources: {
			total: resources.length,
			js_count: js_count,
			css_count: css_count,
			img_count: img_count,
			total_transfer_bytes: total_transfer
		},
		render_blocking: {
			scripts: blocking_scripts,
			stylesheets: blocking_css
		}
	};
})()`

const accessibilityScript = `(() => {
	const issues = [];

	const allImages = document.querySelectorAll('img');
	let missing_alt = 0;
	allImages.forEach(img => {
		if (!img.hasAttribute('alt')) {
			missing_alt++;
			issues.push({
				category: 'missing_alt',
				severity: 'high',
				element: img.src ? img.src.substring(0, 120) : 'unknown',
				message: 'Image missing alt attribute'
			});
		}
	});

	const inputs = document.querySelectorAll(
		'input:not([type="hidden"]):not([type="submit"]):not([type="button"]):not([type="reset"]), textarea, select'
	);
	let unlabeled_inputs = 0;
	inputs.forEach(input => {
		const id = input.id;
		const hasLabel = id
			? document.querySelector('label[for="' + id + '"]') !== null
			: false;
		const hasAriaLabel = input.hasAttribute('aria-label') ||
			input.hasAttribute('aria-labelledby');
		const hasTitle = input.hasAttribute('title');
		if (!hasLabel && !hasAriaLabel && !hasTitle) {
			unlabeled_inputs++;
			issues.push({
				category: 'unlabeled_input',
				severity: 'high',
				element: input.name || input.type || input.tagName.toLowerCase(),
				message: 'Form input has no associated label or aria-label'
			});
		}
	});

	const buttons = document.querySelectorAll('button, [role="button"]');
	let unnamed_buttons = 0;
	buttons.forEach(btn => {
		const text = (btn.textContent || '').trim();
		const ariaLabel = btn.getAttribute('aria-label') || '';
		const ariaLabelledBy = btn.getAttribute('aria-labelledby') || '';
		const title = btn.getAttribute('title') || '';
		if (!text && !ariaLabel && !ariaLabelledBy && !title) {
			unnamed_buttons++;
			issues.push({
				category: 'unnamed_button',
				severity: 'medium',
				element: btn.className ? btn.className.toString().substring(0, 80) : btn.tagName,
				message: 'Button has no accessible name'
			});
		}
	});

	const h1s = document.querySelectorAll('h1');
	let heading_issues = 0;
	if (h1s.length === 0) {
		heading_issues++;
		issues.push({
			category: 'heading_hierarchy',
			severity: 'medium',
			element: 'document',
			message: 'Page has no H1 heading'
		});
	} else if (h1s.length > 1) {
		heading_issues++;
		issues.push({
			category: 'heading_hierarchy',
			severity: 'low',
			element: 'document',
			message: 'Multiple H1 headings found (' + h1s.length + ')'
		});
	}

	const links = document.querySelectorAll('a[href]');
	let empty_links = 0;
	links.forEach(link => {
		const text = (link.textContent || '').trim();
		const ariaLabel = link.getAttribute('aria-label') || '';
		const title = link.getAttribute('title') || '';
		const hasImg = link.querySelector('img[alt]');
		if (!text && !ariaLabel && !title && !hasImg) {
			empty_links++;
			issues.push({
				category: 'empty_link',
				severity: 'medium',
				element: link.href ? link.href.substring(0, 80) : 'unknown',
				message: 'Link has no accessible text'
			});
		}
	});

	const interactiveElements = document.querySelectorAll(
		'a, button, input, select, textarea, [tabindex]'
	);
	let negative_tabindex = 0;
	interactiveElements.forEach(el => {
		const tabindex = el.getAttribute('tabindex');
		if (tabindex !== null && parseInt(tabindex) < 0) {
			negative_tabindex++;
		}
	});
	if (negative_tabindex > 0) {
		issues.push({
			category: 'keyboard_access',
			severity: 'medium',
			element: negative_tabindex + ' elements',
			message: negative_tabindex + ' interactive elements removed from tab order'
		});
	}

	const htmlEl = document.querySelector('html');
	if (!htmlEl || !htmlEl.getAttribute('lang')) {
		issues.push({
			category: 'language',
			severity: 'medium',
			element: 'html',
			message: 'Document missing lang attribute'
		});
	}

	const skipLink = document.querySelector(
		'a[href="#main"], a[href="#content"], a[href="#main-content"], .skip-link'
	);
	if (!skipLink) {
		issues.push({
			category: 'skip_navigation',
			severity: 'low',
			element: 'document',
			message: 'No skip navigation link detected'
		});
	}

	let small_targets = 0;
	document.querySelectorAll('button, a, input, select').forEach(el => {
		const rect = el.getBoundingClientRect();
		if (rect.width > 0 && rect.height > 0) {
			if (rect.width < 24 || rect.height < 24) {
				small_targets++;
			}
		}
	});
	if (small_targets > 0) {
		issues.push({
			category: 'touch_target',
			severity: 'low',
			element: small_targets + ' elements',
			message: small_targets + ' interactive elements smaller than 24x24px'
		});
	}

	const main = document.querySelector('main, [role="main"]');
	const nav_el = document.querySelector('nav, [role="navigation"]');
	if (!main) {
		issues.push({
			category: 'aria_landmarks',
			severity: 'low',
			element: 'document',
			message: 'No main landmark region found'
		});
	}
	if (!nav_el && links.length > 3) {
		issues.push({
			category: 'aria_landmarks',
			severity: 'low',
			element: 'document',
			message: 'Navigation links not wrapped in nav landmark'
		});
	}

	const high = issues.filter(i => i.severity === 'high').length;
	const medium = issues.filter(i => i.severity === 'medium').length;
	const low = issues.filter(i => i.severity === 'low').length;

	return {
		total_issues: issues.length,
		severity_counts: { high, medium, low },
		issues: issues.slice(0, 50),
		checks: {
			missing_alt,
			unlabeled_inputs,
			unnamed_buttons,
			heading_issues,
			empty_links,
			negative_tabindex,
			small_targets
		},
		has_skip_nav: !!skipLink,
		has_lang_attr: !!(htmlEl && htmlEl.getAttribute('lang')),
		has_main_landmark: !!main
	};
})()`

const securityDOMScript = `(() => {
	var issues = [];

	if (location.protocol === 'https:') {
		document.querySelectorAll('img, script, link, iframe').forEach(function(el) {
			var src = el.src || el.href || '';
			if (src.indexOf('http://') === 0) {
				issues.push({
					category: 'mixed_content',
					severity: 'high',
					detail: 'Mixed content: HTTP resource on HTTPS page',
					element: src.substring(0, 100)
				});
			}
		});
	}

	var inlineScripts = document.querySelectorAll('script:not([src])');
	var xss_patterns = 0;
	inlineScripts.forEach(function(script) {
		var code = script.textContent || '';
		if (
			code.indexOf('document.write(') !== -1 ||
			code.indexOf('innerHTML =') !== -1 ||
			code.indexOf('eval(') !== -1
		) {
			xss_patterns++;
		}
	});
	if (xss_patterns > 0) {
		issues.push({
			category: 'xss_risk',
			severity: 'medium',
			detail: xss_patterns + ' inline script(s) with potentially dangerous patterns',
			element: xss_patterns + ' scripts'
		});
	}

	document.querySelectorAll('input[type="password"]').forEach(function(input) {
		var ac = input.getAttribute('autocomplete');
		if (ac === null || ac === 'on') {
			issues.push({
				category: 'autocomplete',
				severity: 'low',
				detail: 'Password field missing autocomplete=off or new-password',
				element: input.name || 'password'
			});
		}
	});

	var forms = document.querySelectorAll('form');
	var unprotected_forms = 0;
	forms.forEach(function(form) {
		var method = (form.method || 'get').toLowerCase();
		if (method === 'post') {
			var csrfField = form.querySelector(
				'input[name*="csrf"], input[name*="token"], input[name*="_token"]'
			);
			if (!csrfField) {
				unprotected_forms++;
			}
		}
	});
	if (unprotected_forms > 0) {
		issues.push({
			category: 'csrf',
			severity: 'high',
			detail: unprotected_forms + ' POST form(s) with no apparent CSRF token',
			element: unprotected_forms + ' forms'
		});
	}

	document.querySelectorAll('meta[name="generator"]').forEach(function(meta) {
		var content = meta.getAttribute('content') || '';
		if (content) {
			issues.push({
				category: 'version_disclosure',
				severity: 'low',
				detail: 'Server/CMS version disclosed: ' + content.substring(0, 80),
				element: 'meta generator'
			});
		}
	});

	return issues;
})()`
