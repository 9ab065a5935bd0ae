package browser

// successOverlayJS paints a full-page confirmation over the logged-in site
// so the operator knows the window can be closed. Purely cosmetic; any
// evaluation failure is swallowed by the caller.
const successOverlayJS = `() => {
	const overlay = document.createElement('div');
	overlay.style.cssText = 'position:fixed;top:0;left:0;width:100%;height:100%;' +
		'background:rgba(0,0,0,0.9);z-index:999999;display:flex;' +
		'align-items:center;justify-content:center;';

	const message = document.createElement('div');
	message.style.cssText = 'background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);' +
		'padding:40px 60px;border-radius:20px;text-align:center;color:white;' +
		'font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,Arial,sans-serif;';

	message.innerHTML =
		'<div style="font-size:72px;margin-bottom:20px;">&#10004;</div>' +
		'<div style="font-size:28px;font-weight:bold;margin-bottom:10px;">Login successful!</div>' +
		'<div style="font-size:18px;opacity:0.9;">You can close the browser now</div>';

	overlay.appendChild(message);
	document.body.appendChild(overlay);
}`
