// Package holiday extracts today's recognized holidays from a holiday
// listing document.
//
// The document is an HTML page carrying a table with id "holidays-table".
// The table's second section holds one row per holiday; each row has a
// data-date attribute with a millisecond Unix timestamp and cells whose
// element children carry holiday names as text:
//
//	<table id="holidays-table">
//	  <thead>...</thead>
//	  <tbody>
//	    <tr data-date="1730332800000">
//	      <th>Oct 31</th>
//	      <td><a href="/halloween">Halloween</a></td>
//	    </tr>
//	  </tbody>
//	</table>
//
// Dates are read in UTC and compared to today's local month and day; the
// year is ignored, so a recurring holiday matches every year. Repeated
// matches of the same name are all reported.
package holiday
