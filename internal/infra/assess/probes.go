package assess

// In-page probe expressions. Each is a self-invoking expression returning a
// plain JSON object so the driver can unmarshal it directly.

type nodeRef struct {
	NodeLabel string `json:"nodeLabel"`
	Selector  string `json:"selector"`
	Path      string `json:"path"`
}

type targetSizeProbe struct {
	Total int `json:"total"`
	Small int `json:"small"`
	Items []struct {
		Node   nodeRef `json:"node"`
		Width  int     `json:"width"`
		Height int     `json:"height"`
	} `json:"items"`
}

const targetSizeJS = `(() => {
	const elements = document.querySelectorAll('a, button, input[type="button"], input[type="submit"]');
	const smallItems = [];
	elements.forEach(el => {
		const rect = el.getBoundingClientRect();
		if (rect.width < 44 || rect.height < 44) {
			smallItems.push({
				node: {
					nodeLabel: el.textContent.trim().substring(0, 50) || el.tagName.toLowerCase(),
					selector: el.tagName.toLowerCase() + (el.id ? '#' + el.id : '') + (el.className ? '.' + el.className.split(' ')[0] : ''),
					path: el.tagName.toLowerCase()
				},
				width: Math.round(rect.width),
				height: Math.round(rect.height)
			});
		}
	});
	return { total: elements.length, small: smallItems.length, items: smallItems.slice(0, 50) };
})()`

type namedElementProbe struct {
	Total   int `json:"total"`
	Failing int `json:"failing"`
	Items   []struct {
		Node nodeRef `json:"node"`
	} `json:"items"`
}

const linkNameJS = `(() => {
	const links = Array.from(document.querySelectorAll('a'));
	const failingItems = [];
	links.forEach(link => {
		const text = link.textContent.trim();
		const ariaLabel = link.getAttribute('aria-label');
		const title = link.getAttribute('title');
		if (!text && !ariaLabel && !title) {
			failingItems.push({
				node: {
					nodeLabel: link.href || 'Link',
					selector: link.tagName.toLowerCase() + (link.id ? '#' + link.id : '') + (link.className ? '.' + link.className.split(' ')[0] : ''),
					path: link.tagName.toLowerCase()
				}
			});
		}
	});
	return { total: links.length, failing: failingItems.length, items: failingItems.slice(0, 50) };
})()`

const buttonNameJS = `(() => {
	const buttons = Array.from(document.querySelectorAll('button, input[type="button"], input[type="submit"]'));
	const failingItems = [];
	buttons.forEach(btn => {
		const text = btn.textContent.trim();
		const ariaLabel = btn.getAttribute('aria-label');
		const value = btn.getAttribute('value');
		if (!text && !ariaLabel && !value) {
			failingItems.push({
				node: {
					nodeLabel: btn.tagName.toLowerCase(),
					selector: btn.tagName.toLowerCase() + (btn.id ? '#' + btn.id : '') + (btn.className ? '.' + btn.className.split(' ')[0] : ''),
					path: btn.tagName.toLowerCase()
				}
			});
		}
	});
	return { total: buttons.length, failing: failingItems.length, items: failingItems.slice(0, 50) };
})()`

const labelJS = `(() => {
	const inputs = Array.from(document.querySelectorAll('input, textarea, select'));
	const failingItems = [];
	inputs.forEach(input => {
		const id = input.id;
		const label = id ? document.querySelector('label[for="' + id + '"]') : null;
		const ariaLabel = input.getAttribute('aria-label');
		const placeholder = input.getAttribute('placeholder');
		if (!label && !ariaLabel && !placeholder) {
			failingItems.push({
				node: {
					nodeLabel: input.tagName.toLowerCase() + (input.type ? '[' + input.type + ']' : ''),
					selector: input.tagName.toLowerCase() + (input.id ? '#' + input.id : '') + (input.className ? '.' + input.className.split(' ')[0] : ''),
					path: input.tagName.toLowerCase()
				}
			});
		}
	});
	return { total: inputs.length, failing: failingItems.length, items: failingItems.slice(0, 50) };
})()`

const headingOrderJS = `(() => {
	const headings = Array.from(document.querySelectorAll('h1, h2, h3, h4, h5, h6'));
	let lastLevel = 0;
	for (const heading of headings) {
		const level = parseInt(heading.tagName[1]);
		if (level > lastLevel + 1) return false;
		lastLevel = level;
	}
	return true;
})()`

type textFontProbe struct {
	Total int `json:"total"`
	Small int `json:"small"`
	Items []struct {
		TextSnippet       string `json:"textSnippet"`
		ContainerSelector string `json:"containerSelector"`
		FontSize          string `json:"fontSize"`
	} `json:"items"`
}

const textFontJS = `(() => {
	const elements = document.querySelectorAll('p, span, div, li, td, th, a, button, label');
	const failingItems = [];
	elements.forEach(el => {
		const style = window.getComputedStyle(el);
		const fontSize = parseFloat(style.fontSize);
		if (fontSize < 16 && el.textContent.trim()) {
			failingItems.push({
				textSnippet: el.textContent.trim().substring(0, 100) || 'Text element',
				containerSelector: el.tagName.toLowerCase() + (el.id ? '#' + el.id : '') + (el.className ? '.' + el.className.split(' ')[0] : ''),
				fontSize: fontSize.toFixed(1) + 'px'
			});
		}
	});
	return { total: elements.length, small: failingItems.length, items: failingItems.slice(0, 50) };
})()`

type performanceProbe struct {
	LoadTime float64 `json:"loadTime"`
	LCP      float64 `json:"lcp"`
}

const performanceJS = `(() => {
	const perf = performance.timing;
	const paint = performance.getEntriesByType('paint');
	const lcp = paint.find(p => p.name === 'largest-contentful-paint');
	return {
		loadTime: perf.loadEventEnd - perf.navigationStart,
		lcp: lcp ? lcp.startTime : 0
	};
})()`

const domSizeJS = `(() => document.querySelectorAll('*').length)()`

const readyStateJS = `(() => document.readyState)()`
